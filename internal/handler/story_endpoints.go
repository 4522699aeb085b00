package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storyboard-server/internal/messaging"
	"storyboard-server/internal/models"
)

// storyURI reads the optional uri query parameter. Absent means the story
// has no representative image.
func storyURI(c *gin.Context) *string {
	if v, ok := c.GetQuery("uri"); ok {
		return &v
	}
	return nil
}

func sceneIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		abortBadRequest(c, models.ErrCodeValidation, "Scene index must be a non-negative integer")
		return 0, false
	}
	return idx, true
}

func (h *Handler) listStories(c *gin.Context) {
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toStoryResponses(lib.Stories.List()))
}

func (h *Handler) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, models.ErrCodeBadRequest, "Invalid request data: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		abortBadRequest(c, models.ErrCodeValidation, msgStoryTitleMissing)
		return
	}

	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	story := models.Story{
		URI:         req.URI,
		Title:       req.Title,
		Description: req.Description,
		Time:        req.Time,
		Scenes:      req.Scenes,
	}
	if err := lib.Stories.Add(c.Request.Context(), story); err != nil {
		handleServiceError(c, err)
		return
	}
	storiesCreatedTotal.Inc()
	created, _ := lib.Stories.Get(story.URI)
	c.JSON(http.StatusCreated, toStoryResponse(created))
}

func (h *Handler) deleteStory(c *gin.Context) {
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	n, err := lib.Stories.Remove(c.Request.Context(), storyURI(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

func (h *Handler) updateScene(c *gin.Context) {
	idx, ok := sceneIndex(c)
	if !ok {
		return
	}
	var patch models.ScenePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortBadRequest(c, models.ErrCodeBadRequest, "Invalid request data: "+err.Error())
		return
	}
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	uri := storyURI(c)
	if err := lib.Stories.UpdateScene(c.Request.Context(), uri, idx, patch); err != nil {
		handleServiceError(c, err)
		return
	}
	story, _ := lib.Stories.Get(uri)
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *Handler) deleteScene(c *gin.Context) {
	idx, ok := sceneIndex(c)
	if !ok {
		return
	}
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	uri := storyURI(c)
	if err := lib.Stories.RemoveScene(c.Request.Context(), uri, idx); err != nil {
		handleServiceError(c, err)
		return
	}
	story, _ := lib.Stories.Get(uri)
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *Handler) generateScenes(c *gin.Context) {
	if h.publisher == nil {
		handleServiceError(c, models.ErrUnavailable)
		return
	}
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	story, found := lib.Stories.Get(storyURI(c))
	if !found {
		handleServiceError(c, models.ErrNotFound)
		return
	}

	tasks, err := messaging.QueueMissingImages(c.Request.Context(), h.publisher, c.GetString(ctxUserID), story)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	resp := generateResponse{Queued: len(tasks), TaskIDs: make([]string, len(tasks))}
	for i, t := range tasks {
		resp.TaskIDs[i] = t.TaskID
	}
	c.JSON(http.StatusAccepted, resp)
}
