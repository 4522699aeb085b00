package handler

import "storyboard-server/internal/models"

// Context keys set by AuthMiddleware.
const (
	ctxUserID     = "user_id"
	ctxAccessUUID = "access_uuid"
)

// Messages shown by the app.
const (
	msgUploadFieldsMissing = "제목, 내용, 시간을 모두 입력해주세요!"
	msgImageMissing        = "이미지 파일이 필요합니다."
	msgDuplicateUser       = "이미 가입된 이메일입니다."
	msgNotFound            = "요청한 항목을 찾을 수 없습니다."
	msgStoryTitleMissing   = "제목을 입력해주세요."
	msgGenerationDisabled  = "이미지 생성 기능을 사용할 수 없습니다."
	msgStorageUnavailable  = "저장소에 연결할 수 없습니다. 잠시 후 다시 시도해주세요."
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateImageRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Time        *string `json:"time"`
}

type imageResponse struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

func toImageResponse(r models.ImageRecord) imageResponse {
	return imageResponse{ID: r.URI, URI: r.URI, Title: r.Title, Description: r.Description, Time: r.Time}
}

func toImageResponses(records []models.ImageRecord) []imageResponse {
	out := make([]imageResponse, len(records))
	for i, r := range records {
		out[i] = toImageResponse(r)
	}
	return out
}

type createStoryRequest struct {
	URI         *string        `json:"uri"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Time        string         `json:"time"`
	Scenes      []models.Scene `json:"scenes"`
}

// sceneResponse adds the image the player shows: the scene's own image or,
// failing that, the story's representative image.
type sceneResponse struct {
	models.Scene
	DisplayImage string `json:"displayImage"`
}

type storyResponse struct {
	URI         *string         `json:"uri"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Time        string          `json:"time"`
	Scenes      []sceneResponse `json:"scenes"`
}

func toStoryResponse(s models.Story) storyResponse {
	resp := storyResponse{
		URI:         s.URI,
		Title:       s.Title,
		Description: s.Description,
		Time:        s.Time,
		Scenes:      make([]sceneResponse, len(s.Scenes)),
	}
	for i, sc := range s.Scenes {
		resp.Scenes[i] = sceneResponse{Scene: sc, DisplayImage: s.SceneImage(i)}
	}
	return resp
}

func toStoryResponses(stories []models.Story) []storyResponse {
	out := make([]storyResponse, len(stories))
	for i, s := range stories {
		out[i] = toStoryResponse(s)
	}
	return out
}

type generateResponse struct {
	Queued  int      `json:"queued"`
	TaskIDs []string `json:"task_ids"`
}
