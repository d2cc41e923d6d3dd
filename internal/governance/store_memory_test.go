package governance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

func newRequest(submitted time.Time) AnalysisRequest {
	return AnalysisRequest{
		ID:           domain.NewRequestID(),
		ContainerID:  domain.NewContainerID(),
		ResearcherID: domain.NewResearcherID(),
		Kind:         domain.AnalysisSummaryStats,
		State:        StateSubmitted,
		SubmittedAt:  submitted,
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t.Run("save rejects duplicates", func(t *testing.T) {
		store := NewInMemoryStore()
		req := newRequest(base)
		require.NoError(t, store.Save(ctx, req))

		err := store.Save(ctx, req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("update requires an existing request", func(t *testing.T) {
		store := NewInMemoryStore()
		err := store.Update(ctx, newRequest(base))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find returns a saved request", func(t *testing.T) {
		store := NewInMemoryStore()
		req := newRequest(base)
		require.NoError(t, store.Save(ctx, req))

		got, err := store.Find(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, req, got)

		_, err = store.Find(ctx, domain.NewRequestID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list orders by submission time", func(t *testing.T) {
		store := NewInMemoryStore()
		second := newRequest(base.Add(time.Minute))
		first := newRequest(base)
		require.NoError(t, store.Save(ctx, second))
		require.NoError(t, store.Save(ctx, first))

		all, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, first.ID, all[0].ID)
		assert.Equal(t, second.ID, all[1].ID)
	})

	t.Run("list by container filters", func(t *testing.T) {
		store := NewInMemoryStore()
		target := newRequest(base)
		other := newRequest(base.Add(time.Second))
		require.NoError(t, store.Save(ctx, target))
		require.NoError(t, store.Save(ctx, other))

		got, err := store.ListByContainer(ctx, target.ContainerID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, target.ID, got[0].ID)
	})
}
