package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/library"
	"storyboard-server/internal/models"
)

type fakeChannel struct {
	declared   []string
	published  []amqp091.Publishing
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	if key != QueueSceneImageTasks {
		return errors.New("unexpected routing key " + key)
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeAck struct {
	acked, nacked, requeued int
}

func (a *fakeAck) Ack(uint64, bool) error { a.acked++; return nil }

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *fakeAck) Reject(uint64, bool) error { return nil }

func TestScenePublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := newScenePublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{QueueSceneImageTasks}, ch.declared)

	task := SceneImageTask{TaskID: "t1", UserID: "u1", StoryURI: models.StringPtr("file://s"), SceneIndex: 2, Prompt: "a moon"}
	require.NoError(t, pub.PublishSceneTask(context.Background(), task))
	require.Len(t, ch.published, 1)
	assert.Equal(t, amqp091.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, "t1", ch.published[0].MessageId)

	var got SceneImageTask
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	assert.Equal(t, task, got)

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestScenePublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	pub, err := newScenePublisher(ch)
	require.NoError(t, err)
	assert.Error(t, pub.PublishSceneTask(context.Background(), SceneImageTask{TaskID: "t1"}))
}

func TestQueueMissingImages(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := newScenePublisher(ch)
	require.NoError(t, err)

	story := models.Story{
		URI: models.StringPtr("file://s"),
		Scenes: []models.Scene{
			{Image: models.StringPtr("file://done.png"), Prompt: "drawn"},
			{Prompt: "needs image"},
			{Image: models.StringPtr(""), Prompt: "empty image"},
			{},
		},
	}
	tasks, err := QueueMissingImages(context.Background(), pub, "u1", story)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].SceneIndex)
	assert.Equal(t, 2, tasks[1].SceneIndex)
	assert.NotEqual(t, tasks[0].TaskID, tasks[1].TaskID)
	assert.Len(t, ch.published, 2)

	_, err = QueueMissingImages(context.Background(), nil, "u1", story)
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func newConsumerWithStory(t *testing.T) (*ResultConsumer, *library.Library, *kv.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	slots := kv.NewMemoryStore()
	libs := library.NewManager(slots, zap.NewNop())
	lib, err := libs.For(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, lib.Stories.Add(ctx, models.Story{
		URI:    models.StringPtr("file://s"),
		Title:  "Moon",
		Scenes: []models.Scene{{Prompt: "a moon"}},
	}))
	return newResultConsumer(libs, zap.NewNop()), lib, slots
}

func delivery(t *testing.T, ack *fakeAck, v any) amqp091.Delivery {
	t.Helper()
	body, ok := v.([]byte)
	if !ok {
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestResultConsumer_AppliesImage(t *testing.T) {
	c, lib, _ := newConsumerWithStory(t)
	ack := &fakeAck{}

	c.handleDelivery(delivery(t, ack, SceneImageResult{
		TaskID: "t1", UserID: "u1", StoryURI: models.StringPtr("file://s"),
		SceneIndex: 0, ImageURL: "http://img/1.png", Success: true,
	}))

	assert.Equal(t, 1, ack.acked)
	story, ok := lib.Stories.Get(models.StringPtr("file://s"))
	require.True(t, ok)
	require.NotNil(t, story.Scenes[0].Image)
	assert.Equal(t, "http://img/1.png", *story.Scenes[0].Image)
	assert.True(t, story.Scenes[0].IsGenerated)
	assert.Equal(t, "a moon", story.Scenes[0].Prompt)
}

func TestResultConsumer_MalformedIsDropped(t *testing.T) {
	c, _, _ := newConsumerWithStory(t)
	ack := &fakeAck{}
	c.handleDelivery(delivery(t, ack, []byte("{not json")))
	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, 0, ack.requeued)
}

func TestResultConsumer_FailureAndStaleAreAcked(t *testing.T) {
	c, lib, _ := newConsumerWithStory(t)

	ack := &fakeAck{}
	c.handleDelivery(delivery(t, ack, SceneImageResult{TaskID: "t1", UserID: "u1", StoryURI: models.StringPtr("file://s"), Error: "gpu on fire"}))
	assert.Equal(t, 1, ack.acked)

	ack = &fakeAck{}
	c.handleDelivery(delivery(t, ack, SceneImageResult{TaskID: "t2", UserID: "u1", StoryURI: models.StringPtr("file://gone"), ImageURL: "x", Success: true}))
	assert.Equal(t, 1, ack.acked)

	ack = &fakeAck{}
	c.handleDelivery(delivery(t, ack, SceneImageResult{TaskID: "t3", UserID: "u1", StoryURI: models.StringPtr("file://s"), SceneIndex: 5, ImageURL: "x", Success: true}))
	assert.Equal(t, 1, ack.acked)

	story, _ := lib.Stories.Get(models.StringPtr("file://s"))
	assert.Nil(t, story.Scenes[0].Image)
}

func TestResultConsumer_PersistenceFailureRequeues(t *testing.T) {
	c, _, slots := newConsumerWithStory(t)
	slots.FailWith(errors.New("disk full"))

	ack := &fakeAck{}
	c.handleDelivery(delivery(t, ack, SceneImageResult{
		TaskID: "t1", UserID: "u1", StoryURI: models.StringPtr("file://s"), ImageURL: "x", Success: true,
	}))
	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.requeued)
}
