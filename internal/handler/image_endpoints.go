package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-server/internal/blob"
	"storyboard-server/internal/models"
)

func (h *Handler) listImages(c *gin.Context) {
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	var records []models.ImageRecord
	if q := c.Query("q"); q != "" {
		records = lib.Images.Search(q)
	} else {
		records = lib.Images.List()
	}
	c.JSON(http.StatusOK, toImageResponses(records))
}

func (h *Handler) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	when := strings.TrimSpace(c.PostForm("time"))
	if title == "" || description == "" || when == "" {
		abortBadRequest(c, models.ErrCodeValidation, msgUploadFieldsMissing)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		abortBadRequest(c, models.ErrCodeValidation, msgImageMissing)
		return
	}
	file, err := fh.Open()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer file.Close()

	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	uri, err := h.blobs.Put(ctx, fh.Filename, fh.Header.Get("Content-Type"), file, fh.Size)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	record := models.ImageRecord{URI: uri, Title: title, Description: description, Time: when}
	if err := lib.Images.Add(ctx, record); err != nil {
		// Add keeps the record in memory on a failed save; drop it with the file.
		if _, rmErr := lib.Images.Remove(ctx, uri); rmErr != nil {
			h.logger.Warn("Failed to persist rollback of upload", zap.String("uri", uri), zap.Error(rmErr))
		}
		if delErr := h.blobs.Delete(ctx, uri); delErr != nil {
			h.logger.Warn("Failed to remove orphaned upload", zap.String("uri", uri), zap.Error(delErr))
		}
		handleServiceError(c, err)
		return
	}

	imagesUploadedTotal.Inc()
	c.JSON(http.StatusCreated, toImageResponse(record))
}

func (h *Handler) updateImage(c *gin.Context) {
	uri := c.Param("id")
	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, models.ErrCodeBadRequest, "Invalid request data: "+err.Error())
		return
	}
	patch := models.ImagePatch{Title: req.Title, Description: req.Description, Time: req.Time}
	if patch.IsEmpty() {
		abortBadRequest(c, models.ErrCodeValidation, "Nothing to update")
		return
	}

	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	n, err := lib.Images.Update(c.Request.Context(), uri, patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if n == 0 {
		handleServiceError(c, models.ErrNotFound)
		return
	}
	for _, r := range lib.Images.List() {
		if r.URI == uri {
			c.JSON(http.StatusOK, toImageResponse(r))
			return
		}
	}
	handleServiceError(c, models.ErrNotFound)
}

func (h *Handler) deleteImage(c *gin.Context) {
	uri := c.Param("id")
	lib, ok := h.userLibrary(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	n, err := lib.Images.Remove(ctx, uri)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if n == 0 {
		handleServiceError(c, models.ErrNotFound)
		return
	}
	if err := h.blobs.Delete(ctx, uri); err != nil && !errors.Is(err, blob.ErrForeignURI) {
		h.logger.Warn("Failed to delete image file", zap.String("uri", uri), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}
