package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storyboard-server/internal/library"
	"storyboard-server/internal/models"
)

// Libraries resolves the library a result belongs to.
type Libraries interface {
	For(ctx context.Context, userID string) (*library.Library, error)
}

// ResultConsumer applies SceneImageResult messages to the owners' stories.
type ResultConsumer struct {
	conn        *amqp091.Connection
	ch          *amqp091.Channel
	libs        Libraries
	logger      *zap.Logger
	consumerTag string
	timeout     time.Duration
	done        chan error
}

// NewResultConsumer opens a channel on conn and declares the result queue.
func NewResultConsumer(conn *amqp091.Connection, libs Libraries, logger *zap.Logger) (*ResultConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	c := newResultConsumer(libs, logger)
	c.conn = conn

	var err error
	c.ch, err = conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := c.ch.QueueDeclare(QueueSceneImageResults, true, false, false, false, nil); err != nil {
		_ = c.ch.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", QueueSceneImageResults, err)
	}
	if err := c.ch.Qos(1, 0, false); err != nil {
		_ = c.ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}
	return c, nil
}

func newResultConsumer(libs Libraries, logger *zap.Logger) *ResultConsumer {
	tag := fmt.Sprintf("scene_result_consumer_%d", time.Now().UnixNano())
	return &ResultConsumer{
		libs:        libs,
		logger:      logger.Named("SceneResultConsumer").With(zap.String("consumerTag", tag), zap.String("queue", QueueSceneImageResults)),
		consumerTag: tag,
		timeout:     10 * time.Second,
		done:        make(chan error, 1),
	}
}

// StartConsuming blocks until Stop is called or the channel closes.
func (c *ResultConsumer) StartConsuming() error {
	deliveries, err := c.ch.Consume(QueueSceneImageResults, c.consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	notifyClose := c.ch.NotifyClose(make(chan *amqp091.Error, 1))
	go func() {
		if err := <-notifyClose; err != nil {
			c.logger.Error("RabbitMQ channel closed unexpectedly", zap.Error(err))
			c.signal(err)
		}
	}()
	go func() {
		for d := range deliveries {
			c.handleDelivery(d)
		}
		c.logger.Info("Deliveries channel closed")
		c.signal(nil)
	}()

	c.logger.Info("Consumer started")
	return <-c.done
}

func (c *ResultConsumer) signal(err error) {
	select {
	case c.done <- err:
	default:
	}
}

// Stop cancels the subscription and closes the channel.
func (c *ResultConsumer) Stop() error {
	if c.ch == nil {
		return nil
	}
	if err := c.ch.Cancel(c.consumerTag, false); err != nil {
		c.logger.Error("Failed to cancel consumer", zap.Error(err))
	}
	if err := c.ch.Close(); err != nil {
		c.logger.Error("Failed to close channel", zap.Error(err))
	}
	c.signal(nil)
	c.logger.Info("Consumer stopped")
	return nil
}

func (c *ResultConsumer) handleDelivery(d amqp091.Delivery) {
	log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))

	var result SceneImageResult
	if err := json.Unmarshal(d.Body, &result); err != nil {
		sceneResultsProcessed.WithLabelValues("malformed").Inc()
		log.Warn("Malformed scene result, rejecting", zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	err := c.apply(ctx, result)
	cancel()

	if err != nil {
		sceneResultsProcessed.WithLabelValues("error").Inc()
		log.Error("Failed to apply scene result, requeueing", zap.String("taskID", result.TaskID), zap.Error(err))
		if err := d.Nack(false, true); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.Error("Failed to ack message", zap.Error(err))
	}
}

// apply returns an error only for failures worth retrying.
func (c *ResultConsumer) apply(ctx context.Context, result SceneImageResult) error {
	log := c.logger.With(zap.String("taskID", result.TaskID), zap.String("userID", result.UserID), zap.Int("sceneIndex", result.SceneIndex))

	if !result.Success || result.ImageURL == "" {
		sceneResultsProcessed.WithLabelValues("failed").Inc()
		log.Warn("Scene image generation failed", zap.String("error", result.Error))
		return nil
	}

	lib, err := c.libs.For(ctx, result.UserID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			sceneResultsProcessed.WithLabelValues("stale").Inc()
			log.Warn("Scene result without owner, dropping")
			return nil
		}
		return err
	}

	patch := models.ScenePatch{
		Image:       models.StringPtr(result.ImageURL),
		IsGenerated: models.BoolPtr(true),
	}
	err = lib.Stories.UpdateScene(ctx, result.StoryURI, result.SceneIndex, patch)
	switch {
	case err == nil:
		sceneResultsProcessed.WithLabelValues("applied").Inc()
		log.Info("Scene image applied", zap.String("imageURL", result.ImageURL))
		return nil
	case errors.Is(err, models.ErrNotFound):
		sceneResultsProcessed.WithLabelValues("stale").Inc()
		log.Warn("Story or scene no longer exists, dropping result")
		return nil
	default:
		return err
	}
}
