package vault

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geovault/internal/dataset"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
	audit "geovault/pkg/platform/audit"
	auditmem "geovault/pkg/platform/audit/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testRecords() []dataset.RawRecord {
	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return []dataset.RawRecord{
		{DriverID: 0, Latitude: 40.7128, Longitude: -74.0060, Timestamp: ts},
		{DriverID: 1, Latitude: 40.7130, Longitude: -74.0062, Timestamp: ts.Add(time.Minute)},
		{DriverID: 1, Latitude: 40.7131, Longitude: -74.0061, Timestamp: ts.Add(2 * time.Minute)},
	}
}

func TestSeal_ProducesMetadataAndAudit(t *testing.T) {
	ctx := context.Background()
	auditStore := auditmem.New()
	svc := NewService(NewInMemoryStore(), audit.NewPublisher(auditStore), testLogger())
	owner := domain.NewOwnerID()

	meta, err := svc.Seal(ctx, owner, "test-batch", testRecords())
	require.NoError(t, err)

	assert.False(t, meta.ID.IsNil())
	assert.Equal(t, owner, meta.OwnerID)
	assert.Equal(t, 3, meta.RecordCount)
	assert.Equal(t, 2, meta.DriverCount)
	assert.True(t, meta.SpanEnd.After(meta.SpanStart))

	events := auditStore.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionContainerSealed, events[0].Action)
	assert.Equal(t, meta.ID.String(), events[0].ContainerID)
}

func TestSeal_RejectsMalformedBatch(t *testing.T) {
	svc := NewService(NewInMemoryStore(), audit.NewPublisher(auditmem.New()), testLogger())

	_, err := svc.Seal(context.Background(), domain.NewOwnerID(), "bad", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

// Metadata is the only surface Describe exposes; record values never appear.
func TestDescribe_UsesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewMetadataCache(client, time.Minute, nil)

	svc := NewService(NewInMemoryStore(), audit.NewPublisher(auditmem.New()), testLogger(), WithCache(cache))

	meta, err := svc.Seal(ctx, domain.NewOwnerID(), "cached", testRecords())
	require.NoError(t, err)

	// Seal primes the cache; Describe should hit it.
	cached, ok := cache.Get(ctx, meta.ID)
	require.True(t, ok)
	assert.Equal(t, meta.ID, cached.ID)

	got, err := svc.Describe(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.RecordCount, got.RecordCount)
}

func TestCompute_IsTheOnlyReadPath(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryStore(), audit.NewPublisher(auditmem.New()), testLogger())

	meta, err := svc.Seal(ctx, domain.NewOwnerID(), "compute", testRecords())
	require.NoError(t, err)

	var seen int
	err = svc.Compute(ctx, meta.ID, func(records []dataset.RawRecord) error {
		seen = len(records)
		// Mutating the copy must not affect the sealed container.
		records[0].Latitude = 0
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)

	err = svc.Compute(ctx, meta.ID, func(records []dataset.RawRecord) error {
		assert.Equal(t, 40.7128, records[0].Latitude)
		return nil
	})
	require.NoError(t, err)
}

func TestCompute_UnknownContainer(t *testing.T) {
	svc := NewService(NewInMemoryStore(), audit.NewPublisher(auditmem.New()), testLogger())

	err := svc.Compute(context.Background(), domain.NewContainerID(), func([]dataset.RawRecord) error {
		t.Fatal("fn must not run for a missing container")
		return nil
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
