package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Publisher emits audit events with fail-closed semantics. Emit blocks until
// the store write succeeds; if it fails, the calling operation must fail too.
// Governance transitions without an audit record are not allowed to stand.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a fail-closed publisher over the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes an event to the audit store. Returns an error
// when persistence fails; the caller must abort its operation.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

// ListByRequest returns the recorded trail for a single analysis request.
func (p *Publisher) ListByRequest(ctx context.Context, requestID string) ([]Event, error) {
	return p.store.ListByRequest(ctx, requestID)
}
