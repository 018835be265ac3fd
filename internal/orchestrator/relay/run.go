package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coursegpt/internal/config"
	"coursegpt/internal/model"
	"coursegpt/internal/pgmq"
	"coursegpt/internal/pubsub"

	"github.com/rs/zerolog"
)

// Queue is the part of the pgmq client the relay reads from
type Queue interface {
	ReadWithPoll(ctx context.Context, queue string, visibilitySec, timeoutSec, maxMessages int) ([]*pgmq.Message, error)
	Delete(ctx context.Context, queue string, msgIDs []int64) error
	Send(ctx context.Context, queue string, payload []byte) (int64, error)
}

type Options struct {
	Queue           string
	DeadLetterQueue string
	Topic           string
	VisibilitySec   int
	PollTimeoutSec  int
	PollMaxMsg      int
	MaxRetries      int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Queue:           cfg.PGMQCourseEventsQueue,
		DeadLetterQueue: cfg.RelayDeadLetterQueue,
		Topic:           cfg.PubSubCourseEventsTopic,
		VisibilitySec:   cfg.RelayVisibilitySec,
		PollTimeoutSec:  cfg.RelayPollTimeoutSec,
		PollMaxMsg:      cfg.RelayPollMaxMsg,
		MaxRetries:      cfg.RelayMaxRetries,
		BackoffInitial:  time.Duration(cfg.RelayBackoffInitialSec) * time.Second,
		BackoffMax:      time.Duration(cfg.RelayBackoffMaxSec) * time.Second,
	}
}

// Relay moves course events from the Postgres outbox queue to the Pub/Sub topic. A
// message is deleted from the queue only after it was published or dead-lettered.
type Relay struct {
	queue     Queue
	publisher pubsub.Publisher
	opts      Options
	logger    zerolog.Logger
}

func New(queue Queue, publisher pubsub.Publisher, opts Options, logger zerolog.Logger) *Relay {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.PollMaxMsg < 1 {
		opts.PollMaxMsg = 1
	}
	return &Relay{
		queue:     queue,
		publisher: publisher,
		opts:      opts,
		logger:    logger.With().Str("component", "relay").Str("queue", opts.Queue).Str("topic", opts.Topic).Logger(),
	}
}

// Run polls the queue until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info().Msg("Starting course event relay")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Shutting down course event relay")
			return nil
		default:
		}

		msgs, err := r.queue.ReadWithPoll(ctx, r.opts.Queue, r.opts.VisibilitySec, r.opts.PollTimeoutSec, r.opts.PollMaxMsg)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			r.logger.Error().Err(err).Msg("Error reading course event queue")
			sleep(ctx, time.Second)
			continue
		}
		for _, msg := range msgs {
			r.handle(ctx, msg)
		}
	}
}

func (r *Relay) handle(ctx context.Context, msg *pgmq.Message) {
	log := r.logger.With().Int64("msg_id", msg.ID).Logger()

	var event model.CourseEvent
	err := json.Unmarshal(msg.Data, &event)
	if err == nil && event.CourseID == "" {
		err = errors.New("missing courseId")
	}
	if err != nil {
		log.Error().Err(err).Msg("Malformed course event, moving to dead-letter queue")
		r.deadLetter(ctx, msg, fmt.Errorf("malformed course event: %w", err))
		return
	}
	log = log.With().Str("course_id", event.CourseID).Str("operation", event.Operation).Logger()

	backoff := r.opts.BackoffInitial
	var publishErr error
	for attempt := 1; attempt <= r.opts.MaxRetries; attempt++ {
		var id string
		id, publishErr = r.publisher.Publish(ctx, r.opts.Topic, msg.Data)
		if publishErr == nil {
			log.Debug().Str("message_id", id).Int("attempt", attempt).Msg("Relayed course event")
			break
		}
		log.Error().Err(publishErr).Int("attempt", attempt).Msg("Publishing course event failed")
		if attempt == r.opts.MaxRetries || !sleep(ctx, backoff) {
			break
		}
		backoff *= 2
		if backoff > r.opts.BackoffMax {
			backoff = r.opts.BackoffMax
		}
	}

	if publishErr != nil {
		if ctx.Err() != nil {
			// the message becomes visible again after its visibility timeout
			return
		}
		log.Warn().Int("attempts", r.opts.MaxRetries).Err(publishErr).Msg("Exhausted all publish retries; moving event to DLQ")
		r.deadLetter(ctx, msg, publishErr)
		return
	}

	if err := r.queue.Delete(ctx, r.opts.Queue, []int64{msg.ID}); err != nil {
		log.Error().Err(err).Msg("Error deleting relayed course event")
	}
}

// deadLetter records the failure alongside the original payload and acknowledges the message
func (r *Relay) deadLetter(ctx context.Context, msg *pgmq.Message, cause error) {
	entry, err := json.Marshal(struct {
		Payload json.RawMessage `json:"payload"`
		Error   string          `json:"error"`
	}{Payload: rawOrString(msg.Data), Error: cause.Error()})
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal dead-letter entry")
		return
	}
	if _, err := r.queue.Send(ctx, r.opts.DeadLetterQueue, entry); err != nil {
		// keep the message so that it is retried rather than lost
		r.logger.Error().Err(err).Str("dlq", r.opts.DeadLetterQueue).Msg("Failed to send message to dead-letter queue")
		return
	}
	if err := r.queue.Delete(ctx, r.opts.Queue, []int64{msg.ID}); err != nil {
		r.logger.Error().Err(err).Int64("msg_id", msg.ID).Msg("Error deleting dead-lettered message")
	}
}

func rawOrString(data []byte) json.RawMessage {
	if json.Valid(data) {
		return data
	}
	quoted, _ := json.Marshal(string(data))
	return quoted
}

// sleep waits for d and reports false when ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
