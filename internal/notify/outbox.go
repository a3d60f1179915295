package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/jobmatch/internal/jobs"
)

// JobDeliver is the job type carrying a Message to the delivery handler.
const JobDeliver = "notify.deliver"

// messageSchema guards the delivery handler against payloads it cannot
// send, such as rows written by an older release.
const messageSchema = `{
	"type": "object",
	"required": ["to_address", "subject", "text_body"],
	"properties": {
		"to_address": {"type": "string", "minLength": 3},
		"to_name": {"type": "string"},
		"subject": {"type": "string", "minLength": 1},
		"text_body": {"type": "string"},
		"html_body": {"type": "string"}
	}
}`

var compiledSchema = mustSchema(messageSchema)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("notify: compile message schema: %v", err))
	}
	return rs
}

type enqueuer interface {
	Enqueue(ctx context.Context, j *jobs.Job) (int64, error)
}

// Outbox implements Notifier by queueing messages as background jobs. The
// delivery code it returns names the job.
type Outbox struct {
	queue       enqueuer
	maxAttempts int
	logger      *slog.Logger
}

func NewOutbox(queue enqueuer, maxAttempts int, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{queue: queue, maxAttempts: maxAttempts, logger: logger}
}

func (o *Outbox) Notify(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	id, err := o.queue.Enqueue(ctx, &jobs.Job{
		Type:        JobDeliver,
		Payload:     payload,
		MaxAttempts: o.maxAttempts,
		Priority:    10,
	})
	if err != nil {
		return "", fmt.Errorf("queue notification: %w", err)
	}

	o.logger.Debug("notification queued", slog.Int64("job_id", id), slog.String("to", msg.ToAddress))
	return fmt.Sprintf("job-%d", id), nil
}

// DeliveryHandler returns the job handler that validates a queued message
// and passes it to next. Invalid payloads fail permanently; delivery errors
// are returned so the queue retries them.
func DeliveryHandler(next Notifier) jobs.Handler {
	return func(ctx context.Context, j *jobs.Job) error {
		keyErrs, err := compiledSchema.ValidateBytes(ctx, j.Payload)
		if err != nil {
			return fmt.Errorf("%w: decode payload: %v", jobs.ErrPermanent, err)
		}
		if len(keyErrs) > 0 {
			msgs := make([]string, 0, len(keyErrs))
			for _, ke := range keyErrs {
				msgs = append(msgs, ke.Error())
			}
			return fmt.Errorf("%w: invalid payload: %s", jobs.ErrPermanent, strings.Join(msgs, "; "))
		}

		var msg Message
		if err := json.Unmarshal(j.Payload, &msg); err != nil {
			return fmt.Errorf("%w: decode payload: %v", jobs.ErrPermanent, err)
		}
		if _, err := next.Notify(ctx, msg); err != nil {
			return err
		}
		return nil
	}
}
