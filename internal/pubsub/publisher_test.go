package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"coursegpt/internal/config"
	"coursegpt/internal/model"

	ps "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topic   string
	payload []byte
	err     error
}

func (r *recordingPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	r.topic = topic
	r.payload = payload
	return "msg-1", r.err
}

func TestNewPublisherInvalidProject(t *testing.T) {
	cfg := &config.Config{GCPProjectID: ""}
	if _, err := NewPublisher(context.Background(), cfg); err == nil {
		t.Fatal("expected error when project ID is empty")
	}
}

func TestCourseEventPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewCourseEventPublisher(rec, "course-events", zerolog.Nop())
	updated := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := pub.PublishCourseEvent(context.Background(), model.CourseEvent{
		CourseID:  "c1",
		Operation: "addModule",
		Version:   3,
		UpdatedAt: updated,
	})
	require.NoError(t, err)
	assert.Equal(t, "course-events", rec.topic)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.payload, &got))
	assert.Equal(t, "c1", got["courseId"])
	assert.Equal(t, "addModule", got["operation"])
	assert.Equal(t, float64(3), got["version"])
}

func TestCourseEventPublisherError(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("topic not found")}
	pub := NewCourseEventPublisher(rec, "course-events", zerolog.Nop())
	assert.Error(t, pub.PublishCourseEvent(context.Background(), model.CourseEvent{CourseID: "c1"}))
}

func TestPublishWithEmulator(t *testing.T) {
	emulator := os.Getenv("PUBSUB_EMULATOR_HOST")
	if emulator == "" {
		t.Skip("PUBSUB_EMULATOR_HOST is not set, skip emulator integration test")
	}

	ctx := context.Background()
	cfg := &config.Config{GCPProjectID: "test-project"}
	pub, err := NewPublisher(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create PubSubPublisher: %v", err)
	}
	defer pub.Close()

	topicName := "course-events-test"
	topic, err := pub.client.CreateTopic(ctx, topicName)
	if err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}
	sub, err := pub.client.CreateSubscription(ctx, "course-events-test-sub", ps.SubscriptionConfig{Topic: topic})
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	events := NewCourseEventPublisher(pub, topicName, zerolog.Nop())
	if err := events.PublishCourseEvent(ctx, model.CourseEvent{CourseID: "c1", Operation: "togglePublish", Version: 1}); err != nil {
		t.Fatalf("PublishCourseEvent returned error: %v", err)
	}

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c := make(chan []byte, 1)
	go func() {
		_ = sub.Receive(recvCtx, func(ctx context.Context, m *ps.Message) {
			c <- m.Data
			m.Ack()
			cancel()
		})
	}()

	select {
	case data := <-c:
		var event model.CourseEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if event.CourseID != "c1" || event.Operation != "togglePublish" {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message from emulator subscription")
	}
}
