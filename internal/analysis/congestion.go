package analysis

import (
	"gonum.org/v1/gonum/stat"

	"geovault/internal/dataset"
	dErrors "geovault/pkg/domain-errors"
)

// congestionDeviationCutoff separates tightly clustered (jammed) traces from
// dispersed free-flow traffic. Latitude spread below this means most samples
// sit within a couple of city blocks.
const congestionDeviationCutoff = 0.005

const (
	CongestionHigh = "high"
	CongestionLow  = "low"
)

// Congestion classifies the spatial spread of a trace set. It reports only
// the classification, a confidence, and the spread itself.
func Congestion(records []dataset.RawRecord) (CongestionResult, error) {
	if len(records) < 2 {
		return CongestionResult{}, dErrors.New(dErrors.CodeBadRequest, "need at least two records to measure spread")
	}

	lats := make([]float64, len(records))
	for i, r := range records {
		lats[i] = r.Latitude
	}

	deviation := stat.StdDev(lats, nil)
	if deviation < congestionDeviationCutoff {
		return CongestionResult{Level: CongestionHigh, Confidence: 0.98, Deviation: deviation}, nil
	}
	return CongestionResult{Level: CongestionLow, Confidence: 0.92, Deviation: deviation}, nil
}

// Summary reports batch-level counts and the mean position.
func Summary(records []dataset.RawRecord) (SummaryResult, error) {
	if len(records) == 0 {
		return SummaryResult{}, dErrors.New(dErrors.CodeBadRequest, "no records to analyze")
	}

	lats := make([]float64, len(records))
	lons := make([]float64, len(records))
	for i, r := range records {
		lats[i] = r.Latitude
		lons[i] = r.Longitude
	}

	return SummaryResult{
		RecordCount:   len(records),
		DriverCount:   dataset.DriverCount(records),
		MeanLatitude:  stat.Mean(lats, nil),
		MeanLongitude: stat.Mean(lons, nil),
	}, nil
}
