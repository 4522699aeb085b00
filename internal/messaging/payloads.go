// Package messaging queues scene image generation and applies its results.
package messaging

const (
	// QueueSceneImageTasks receives one task per scene that needs an image.
	QueueSceneImageTasks = "scene_image_tasks"
	// QueueSceneImageResults carries generation outcomes back.
	QueueSceneImageResults = "scene_image_results"
)

// SceneImageTask asks the image generator to draw one scene.
type SceneImageTask struct {
	TaskID     string  `json:"task_id"`
	UserID     string  `json:"user_id"`
	StoryURI   *string `json:"story_uri"`
	SceneIndex int     `json:"scene_index"`
	Prompt     string  `json:"prompt"`
}

// SceneImageResult is the generator's answer to a SceneImageTask.
type SceneImageResult struct {
	TaskID     string  `json:"task_id"`
	UserID     string  `json:"user_id"`
	StoryURI   *string `json:"story_uri"`
	SceneIndex int     `json:"scene_index"`
	ImageURL   string  `json:"image_url,omitempty"`
	Success    bool    `json:"success"`
	Error      string  `json:"error,omitempty"`
}
