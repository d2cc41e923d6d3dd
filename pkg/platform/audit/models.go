// Package audit defines the event model for the governance audit trail.
// Every state transition in the request lifecycle is recorded; compliance
// events are written fail-closed before the transition is allowed to stand.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with governance significance:
	// container sealing, approval decisions, result releases. These require
	// durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Action names an auditable step in the workflow.
type Action string

const (
	ActionContainerSealed  Action = "container_sealed"
	ActionRequestSubmitted Action = "request_submitted"
	ActionRequestApproved  Action = "request_approved"
	ActionRequestDenied    Action = "request_denied"
	ActionRequestExecuted  Action = "request_executed"
	ActionResultReleased   Action = "result_released"
	ActionReleaseBlocked   Action = "release_blocked"
)

// actionCategories is the source of truth for routing. Unknown actions fall
// back to operations so nothing is silently dropped from the trail.
var actionCategories = map[Action]EventCategory{
	ActionContainerSealed:  CategoryCompliance,
	ActionRequestSubmitted: CategoryOperations,
	ActionRequestApproved:  CategoryCompliance,
	ActionRequestDenied:    CategoryCompliance,
	ActionRequestExecuted:  CategoryCompliance,
	ActionResultReleased:   CategoryCompliance,
	ActionReleaseBlocked:   CategoryCompliance,
}

// Category returns the routing category for the action.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. It must never carry raw
// record values; identifiers and decisions only.
type Event struct {
	Timestamp   time.Time
	Action      Action
	Actor       string
	Role        string
	ContainerID string
	RequestID   string
	Decision    string
	Reason      string
	// CorrelationID carries the HTTP request ID when the event originates
	// from an API call.
	CorrelationID string
}

// Store is the persistence sink for audit events. Append must be durable
// before it returns; compliance emission depends on it.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRequest(ctx context.Context, requestID string) ([]Event, error)
}
