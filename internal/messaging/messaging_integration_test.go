package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"storyboard-server/internal/database"
	"storyboard-server/internal/kv"
	"storyboard-server/internal/library"
	"storyboard-server/internal/messaging"
	"storyboard-server/internal/models"
)

type MessagingSuite struct {
	suite.Suite
	ctx          context.Context
	rmqContainer *rabbitmq.RabbitMQContainer
	conn         *amqp091.Connection
}

func (s *MessagingSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.rmqContainer, err = rabbitmq.Run(s.ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start rabbitmq container")
	url, err := s.rmqContainer.AmqpURL(s.ctx)
	require.NoError(s.T(), err)

	s.conn, err = database.ConnectRabbitMQ(s.ctx, url, database.RetryPolicy{MaxRetries: 5, Delay: time.Second}, zap.NewNop())
	require.NoError(s.T(), err)
}

func (s *MessagingSuite) TearDownSuite() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.rmqContainer != nil {
		_ = s.rmqContainer.Terminate(s.ctx)
	}
}

func (s *MessagingSuite) TestPublishedTaskReachesQueue() {
	pub, err := messaging.NewScenePublisher(s.conn)
	s.Require().NoError(err)
	defer pub.Close()

	story := models.Story{URI: models.StringPtr("file://moon.png"), Scenes: []models.Scene{{Prompt: "a moon"}}}
	tasks, err := messaging.QueueMissingImages(s.ctx, pub, "u1", story)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)

	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	var msg amqp091.Delivery
	s.Require().Eventually(func() bool {
		var ok bool
		msg, ok, err = ch.Get(messaging.QueueSceneImageTasks, true)
		return err == nil && ok
	}, 10*time.Second, 100*time.Millisecond)

	var got messaging.SceneImageTask
	s.Require().NoError(json.Unmarshal(msg.Body, &got))
	s.Equal(tasks[0], got)
}

func (s *MessagingSuite) TestConsumerAppliesResult() {
	libs := library.NewManager(kv.NewMemoryStore(), zap.NewNop())
	lib, err := libs.For(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NoError(lib.Stories.Add(s.ctx, models.Story{
		URI:    models.StringPtr("file://sun.png"),
		Title:  "Sun",
		Scenes: []models.Scene{{Prompt: "a sun"}},
	}))

	consumer, err := messaging.NewResultConsumer(s.conn, libs, zap.NewNop())
	s.Require().NoError(err)
	go func() { _ = consumer.StartConsuming() }()
	defer consumer.Stop()

	body, err := json.Marshal(messaging.SceneImageResult{
		TaskID: "t1", UserID: "u1", StoryURI: models.StringPtr("file://sun.png"),
		SceneIndex: 0, ImageURL: "http://img/sun.png", Success: true,
	})
	s.Require().NoError(err)

	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()
	s.Require().NoError(ch.PublishWithContext(s.ctx, "", messaging.QueueSceneImageResults, false, false,
		amqp091.Publishing{ContentType: "application/json", Body: body}))

	s.Require().Eventually(func() bool {
		story, ok := lib.Stories.Get(models.StringPtr("file://sun.png"))
		return ok && story.Scenes[0].Image != nil && *story.Scenes[0].Image == "http://img/sun.png"
	}, 10*time.Second, 100*time.Millisecond)
}

func TestMessagingSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not reachable: %v", err)
	}
	cli.Close()

	suite.Run(t, new(MessagingSuite))
}
