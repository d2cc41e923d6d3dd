// Package postgres implements audit.Store using the transactional outbox
// pattern. Events are written to the outbox table in the same transaction as
// the governance state change; the outbox worker publishes them to Kafka.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "geovault/pkg/platform/audit"
	txcontext "geovault/pkg/platform/tx"
)

// Store writes audit events to the audit_outbox table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// payload is the JSON structure published to Kafka. Field names match
// audit.Event so consumers can deserialize directly.
type payload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Timestamp     string `json:"timestamp"`
	Action        string `json:"action"`
	Actor         string `json:"actor,omitempty"`
	Role          string `json:"role,omitempty"`
	ContainerID   string `json:"container_id,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	Decision      string `json:"decision,omitempty"`
	Reason        string `json:"reason,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Append writes an audit event to the outbox. It participates in the caller's
// transaction when one is carried in ctx.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	body, err := json.Marshal(payload{
		ID:            eventID.String(),
		Category:      string(event.Action.Category()),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Action:        string(event.Action),
		Actor:         event.Actor,
		Role:          event.Role,
		ContainerID:   event.ContainerID,
		RequestID:     event.RequestID,
		Decision:      event.Decision,
		Reason:        event.Reason,
		CorrelationID: event.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	exec := txcontext.Pick(ctx, s.db)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_outbox (id, category, action, request_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		eventID, string(event.Action.Category()), string(event.Action),
		nullable(event.RequestID), body, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

// ListByRequest returns events recorded for one analysis request, oldest
// first. Reads go through the outbox table; Kafka remains the long-term sink.
func (s *Store) ListByRequest(ctx context.Context, requestID string) ([]audit.Event, error) {
	exec := txcontext.Pick(ctx, s.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT payload FROM audit_outbox
		WHERE request_id = $1
		ORDER BY seq ASC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var p payload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("unmarshal audit payload: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, p.Timestamp)
		out = append(out, audit.Event{
			Timestamp:     ts,
			Action:        audit.Action(p.Action),
			Actor:         p.Actor,
			Role:          p.Role,
			ContainerID:   p.ContainerID,
			RequestID:     p.RequestID,
			Decision:      p.Decision,
			Reason:        p.Reason,
			CorrelationID: p.CorrelationID,
		})
	}
	return out, rows.Err()
}

// PendingRow is one unpublished outbox entry.
type PendingRow struct {
	ID      uuid.UUID
	Payload []byte
}

// NextPending returns up to limit unpublished rows, oldest first, locking
// them against concurrent workers.
func (s *Store) NextPending(ctx context.Context, limit int) ([]PendingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY seq ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending outbox rows: %w", err)
	}
	defer rows.Close()

	var out []PendingRow
	for rows.Next() {
		var row PendingRow
		if err := rows.Scan(&row.ID, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MarkPublished stamps rows that made it to Kafka.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now())
	placeholders := ""
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE audit_outbox SET published_at = $1 WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("mark outbox rows published: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
