package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geovault/internal/dataset"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// The same computation over congested and free-flowing inputs must produce
// different classifications and different density pictures.
func TestCongestion_SeparatesScenarios(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	jam := dataset.GenerateScenario(testRNG(7), dataset.ScenarioJam, 40, 10, start)
	free := dataset.GenerateScenario(testRNG(7), dataset.ScenarioFreeFlow, 40, 10, start)

	jamResult, err := Congestion(jam)
	require.NoError(t, err)
	freeResult, err := Congestion(free)
	require.NoError(t, err)

	assert.Equal(t, CongestionHigh, jamResult.Level)
	assert.Equal(t, CongestionLow, freeResult.Level)
	assert.NotEqual(t, jamResult.Deviation, freeResult.Deviation)
}

func TestCongestion_NeedsTwoRecords(t *testing.T) {
	_, err := Congestion([]dataset.RawRecord{{Latitude: 40.7, Longitude: -74.0, Timestamp: time.Now()}})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestSummary_CountsAndMeans(t *testing.T) {
	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	records := []dataset.RawRecord{
		{DriverID: 0, Latitude: 40.0, Longitude: -74.0, Timestamp: ts},
		{DriverID: 0, Latitude: 41.0, Longitude: -73.0, Timestamp: ts},
		{DriverID: 1, Latitude: 42.0, Longitude: -72.0, Timestamp: ts},
	}

	result, err := Summary(records)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RecordCount)
	assert.Equal(t, 2, result.DriverCount)
	assert.InDelta(t, 41.0, result.MeanLatitude, 1e-9)
	assert.InDelta(t, -73.0, result.MeanLongitude, 1e-9)
}

func TestCatalog_DispatchesByKind(t *testing.T) {
	records := scenarioRecords(t, dataset.ScenarioJam)
	catalog := NewCatalog(Config{MinAggregateCount: 0})

	for _, kind := range []string{"density_grid", "congestion_level", "summary_stats"} {
		k, err := domain.ParseAnalysisKind(kind)
		require.NoError(t, err)
		result, err := catalog.Run(k, records, Params{})
		require.NoError(t, err, kind)
		assert.Equal(t, k, result.Kind())
	}

	_, err := catalog.Run("raw_dump", records, Params{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
