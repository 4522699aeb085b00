package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"storyboard-server/internal/models"
)

// TaskPublisher sends scene image tasks.
type TaskPublisher interface {
	PublishSceneTask(ctx context.Context, task SceneImageTask) error
}

// publishChannel is the part of *amqp091.Channel the publisher uses.
type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Compile-time check to ensure ScenePublisher implements TaskPublisher
var _ TaskPublisher = (*ScenePublisher)(nil)

// ScenePublisher publishes SceneImageTask messages to QueueSceneImageTasks.
type ScenePublisher struct {
	ch publishChannel
}

// NewScenePublisher opens a channel on conn and declares the task queue.
func NewScenePublisher(conn *amqp091.Connection) (*ScenePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return newScenePublisher(ch)
}

func newScenePublisher(ch publishChannel) (*ScenePublisher, error) {
	_, err := ch.QueueDeclare(
		QueueSceneImageTasks,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("queue", QueueSceneImageTasks).Msg("Failed to declare queue")
		return nil, fmt.Errorf("failed to declare queue '%s': %w", QueueSceneImageTasks, err)
	}
	log.Info().Str("queue", QueueSceneImageTasks).Msg("Scene task queue declared")
	return &ScenePublisher{ch: ch}, nil
}

// PublishSceneTask publishes task as persistent JSON.
func (p *ScenePublisher) PublishSceneTask(ctx context.Context, task SceneImageTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal scene task: %w", err)
	}
	err = p.ch.PublishWithContext(ctx,
		"",                   // default exchange
		QueueSceneImageTasks, // routing key
		false,                // mandatory
		false,                // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    task.TaskID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		sceneTasksPublished.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("task_id", task.TaskID).Msg("Failed to publish scene task")
		return fmt.Errorf("failed to publish scene task: %w", err)
	}
	sceneTasksPublished.WithLabelValues("ok").Inc()
	log.Debug().Str("task_id", task.TaskID).Int("scene_index", task.SceneIndex).Msg("Scene task published")
	return nil
}

// Close closes the channel.
func (p *ScenePublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// QueueMissingImages publishes a task for every scene of story that has no
// image of its own and a non-empty prompt. It returns the published tasks.
func QueueMissingImages(ctx context.Context, pub TaskPublisher, userID string, story models.Story) ([]SceneImageTask, error) {
	if pub == nil {
		return nil, fmt.Errorf("scene generation is disabled: %w", models.ErrUnavailable)
	}
	var queued []SceneImageTask
	for i, sc := range story.Scenes {
		if sc.Image != nil && *sc.Image != "" {
			continue
		}
		if sc.Prompt == "" {
			continue
		}
		task := SceneImageTask{
			TaskID:     uuid.NewString(),
			UserID:     userID,
			StoryURI:   story.URI,
			SceneIndex: i,
			Prompt:     sc.Prompt,
		}
		if err := pub.PublishSceneTask(ctx, task); err != nil {
			return queued, err
		}
		queued = append(queued, task)
	}
	return queued, nil
}
