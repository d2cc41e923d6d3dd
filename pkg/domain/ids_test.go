package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "geovault/pkg/domain-errors"
)

// TestParseContainerID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseContainerID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseContainerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseContainerID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseContainerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseContainerID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ContainerID(valid), id)
		assert.False(t, id.IsNil())
	})
}

func TestParseRequestID_RoundTrip(t *testing.T) {
	valid := uuid.New()
	id, err := ParseRequestID(valid.String())
	require.NoError(t, err)
	assert.Equal(t, valid.String(), id.String())
}

// TestTypeDistinction verifies the compiler enforces type safety between ID
// kinds. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	containerID := NewContainerID()
	requestID := NewRequestID()

	// These would fail to compile if types were interchangeable:
	// var _ ContainerID = requestID // compile error
	// var _ RequestID = containerID // compile error

	assert.NotEqual(t, uuid.UUID(containerID), uuid.UUID(requestID))
}

func TestParseAnalysisKind(t *testing.T) {
	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseAnalysisKind("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := ParseAnalysisKind("raw_dump")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts registered kinds", func(t *testing.T) {
		for _, s := range []string{"density_grid", "congestion_level", "summary_stats"} {
			k, err := ParseAnalysisKind(s)
			require.NoError(t, err)
			assert.True(t, k.IsValid())
			assert.Equal(t, s, k.String())
		}
	})
}
