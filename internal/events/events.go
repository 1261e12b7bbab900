// Package events publishes accepted submissions to downstream consumers
// (analytics, case management). Delivery is best effort: the HTTP path hands
// events to a Dispatcher and never waits on a broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/classifier"
	"github.com/nyashahama/scas-screening-backend/internal/scoring"
	"github.com/nyashahama/scas-screening-backend/internal/screening"
)

// TypeSubmissionAccepted is the only event type emitted today.
const TypeSubmissionAccepted = "submission.accepted"

// Event is the wire payload, encoded as JSON.
type Event struct {
	Type         string                 `json:"type"`
	SubmissionID string                 `json:"submission_id"`
	UserID       string                 `json:"user_id"`
	Total        int                    `json:"total_score"`
	Subscales    scoring.SubscaleScores `json:"subscales"`
	Level        scoring.Level          `json:"level"`
	Model        classifier.Output      `json:"ml"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// FromResult builds the event for an accepted submission.
func FromResult(r screening.Result) Event {
	return Event{
		Type:         TypeSubmissionAccepted,
		SubmissionID: r.SubmissionID.String(),
		UserID:       r.UserID.String(),
		Total:        r.Vector.Total,
		Subscales:    r.Vector.Subscales,
		Level:        r.Level,
		Model:        r.Model,
		OccurredAt:   r.SubmittedAt.UTC(),
	}
}

// Key partitions events by respondent so one student's events stay ordered.
func (e Event) Key() string { return e.UserID }

func (e Event) encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", e.Type, err)
	}
	return b, nil
}

// ─── PUBLISHER ───────────────────────────────────────────────────────────────

// Publisher delivers one event to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event. Used when no
// broker is configured.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

// Fanout publishes to every wrapped publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ─── DISPATCHER ──────────────────────────────────────────────────────────────

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 10 * time.Second
)

// Dispatcher is a screening.Observer that queues events and publishes them
// from a single goroutine started by Run.
type Dispatcher struct {
	pub     Publisher
	logger  *slog.Logger
	timeout time.Duration
	queue   chan Event
	done    chan struct{}

	mu      sync.Mutex
	stopped bool
}

// NewDispatcher returns a Dispatcher. queueSize <= 0 selects the default.
func NewDispatcher(pub Publisher, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		pub:     pub,
		logger:  logger,
		timeout: defaultPublishTimeout,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}
}

// SubmissionAccepted implements screening.Observer. It never blocks; when the
// queue is full or Run has stopped the event is dropped and logged.
func (d *Dispatcher) SubmissionAccepted(_ context.Context, r screening.Result) {
	e := FromResult(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.logger.Warn("events: dispatcher stopped, event dropped", "submission_id", e.SubmissionID)
		return
	}
	select {
	case d.queue <- e:
	default:
		d.logger.Warn("events: queue full, event dropped", "submission_id", e.SubmissionID)
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// already queued and closes the publisher. Events accepted after that are
// dropped, so cancel ctx only once nothing else can submit.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case e := <-d.queue:
			d.publish(e)
		case <-ctx.Done():
			d.mu.Lock()
			d.stopped = true
			d.mu.Unlock()
			for {
				select {
				case e := <-d.queue:
					d.publish(e)
				default:
					if err := d.pub.Close(); err != nil {
						d.logger.Error("events: close publisher", "error", err)
					}
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

func (d *Dispatcher) publish(e Event) {
	// Own deadline: the request context is gone by the time this runs.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.pub.Publish(ctx, e); err != nil {
		d.logger.Error("events: publish failed",
			"type", e.Type,
			"submission_id", e.SubmissionID,
			"error", err,
		)
		return
	}
	d.logger.Debug("events: published", "type", e.Type, "submission_id", e.SubmissionID)
}
