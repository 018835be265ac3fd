package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"coursegpt/internal/config"
	"coursegpt/internal/model"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
)

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

// EnsureTopic creates topic unless it already exists and reports whether it was created.
func (p *PubSubPublisher) EnsureTopic(ctx context.Context, topic string) (bool, error) {
	exists, err := p.client.Topic(topic).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check topic %s: %w", topic, err)
	}
	if exists {
		return false, nil
	}
	if _, err := p.client.CreateTopic(ctx, topic); err != nil {
		return false, fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	return true, nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// EventPublisher announces committed course changes
type EventPublisher interface {
	PublishCourseEvent(ctx context.Context, event model.CourseEvent) error
}

type courseEventPublisher struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
}

// NewCourseEventPublisher publishes course events as JSON messages on topic
func NewCourseEventPublisher(publisher Publisher, topic string, logger zerolog.Logger) EventPublisher {
	return &courseEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "course_events").Str("topic", topic).Logger(),
	}
}

func (p *courseEventPublisher) PublishCourseEvent(ctx context.Context, event model.CourseEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode course event: %w", err)
	}
	id, err := p.publisher.Publish(ctx, p.topic, payload)
	if err != nil {
		return err
	}
	p.logger.Debug().Str("message_id", id).Str("course_id", event.CourseID).Str("operation", event.Operation).Msg("Published course event")
	return nil
}

// NoopEventPublisher drops every event. It is used when no topic is configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishCourseEvent(context.Context, model.CourseEvent) error { return nil }
