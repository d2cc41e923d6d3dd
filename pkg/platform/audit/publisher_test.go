package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "geovault/pkg/platform/audit"
	"geovault/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func (failingStore) ListByRequest(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func TestEmit_StampsTimestampAndPersists(t *testing.T) {
	store := memory.New()
	pub := audit.NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		Action:    audit.ActionRequestApproved,
		RequestID: "req-1",
		Decision:  "approved",
	})
	require.NoError(t, err)

	events := store.All()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, time.Second)
}

func TestEmit_RequiresAction(t *testing.T) {
	pub := audit.NewPublisher(memory.New())
	require.Error(t, pub.Emit(context.Background(), audit.Event{RequestID: "req-1"}))
}

// Fail-closed: a store failure must surface to the caller so the governance
// transition can be aborted.
func TestEmit_FailClosed(t *testing.T) {
	pub := audit.NewPublisher(failingStore{})
	err := pub.Emit(context.Background(), audit.Event{Action: audit.ActionRequestDenied})
	require.Error(t, err)
}

func TestActionCategories(t *testing.T) {
	assert.Equal(t, audit.CategoryCompliance, audit.ActionRequestApproved.Category())
	assert.Equal(t, audit.CategoryOperations, audit.ActionRequestSubmitted.Category())
	assert.Equal(t, audit.CategoryOperations, audit.Action("unknown").Category())
}
