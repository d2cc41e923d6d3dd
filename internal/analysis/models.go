// Package analysis implements the registered aggregate computations a
// researcher may request against a sealed container. Every function here is
// pure: records in, aggregate out, no I/O. Nothing in this package returns an
// individual coordinate; the release guard verifies that before a result
// leaves the domain.
package analysis

import (
	"encoding/json"

	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// Params carries researcher-supplied tuning for an analysis. Unknown fields
// are rejected at the handler; zero values select defaults.
type Params struct {
	// GridSize sets the density grid resolution (GridSize x GridSize).
	GridSize int `json:"grid_size,omitempty"`
}

// Result is an aggregate produced by a registered analysis. ReleasedValues
// exposes every numeric value that would leave the domain so the release
// guard can check them against the raw inputs.
type Result interface {
	Kind() domain.AnalysisKind
	ReleasedValues() []float64
}

// Bounds is the bounding box an analysis operated over. Cell centers are
// derived from these, never from individual samples.
type Bounds struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Hotspot is a grid cell whose sample count crosses the hotspot threshold.
// Latitude/longitude are the cell center, not any sample's position.
type Hotspot struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
}

// DensityResult is the grid-binned congestion heatmap.
type DensityResult struct {
	GridSize    int       `json:"grid_size"`
	Bounds      Bounds    `json:"bounds"`
	Cells       [][]int   `json:"cells"`
	Hotspots    []Hotspot `json:"hotspots"`
	TotalPoints int       `json:"total_points"`
	// Suppressed counts cells zeroed for aggregating fewer records than the
	// configured minimum.
	Suppressed int `json:"suppressed_cells"`
}

func (DensityResult) Kind() domain.AnalysisKind { return domain.AnalysisDensityGrid }

func (r DensityResult) ReleasedValues() []float64 {
	values := []float64{r.Bounds.LatMin, r.Bounds.LatMax, r.Bounds.LonMin, r.Bounds.LonMax}
	for _, h := range r.Hotspots {
		values = append(values, h.Latitude, h.Longitude, float64(h.Count))
	}
	for _, row := range r.Cells {
		for _, c := range row {
			values = append(values, float64(c))
		}
	}
	return values
}

// CongestionResult classifies spatial spread.
type CongestionResult struct {
	Level      string  `json:"level"`
	Confidence float64 `json:"confidence"`
	Deviation  float64 `json:"deviation"`
}

func (CongestionResult) Kind() domain.AnalysisKind { return domain.AnalysisCongestionLevel }

func (r CongestionResult) ReleasedValues() []float64 {
	return []float64{r.Confidence, r.Deviation}
}

// SummaryResult reports counts and mean position.
type SummaryResult struct {
	RecordCount   int     `json:"record_count"`
	DriverCount   int     `json:"driver_count"`
	MeanLatitude  float64 `json:"mean_latitude"`
	MeanLongitude float64 `json:"mean_longitude"`
}

func (SummaryResult) Kind() domain.AnalysisKind { return domain.AnalysisSummaryStats }

func (r SummaryResult) ReleasedValues() []float64 {
	return []float64{float64(r.RecordCount), float64(r.DriverCount), r.MeanLatitude, r.MeanLongitude}
}

// Encode serializes a result for storage alongside its request.
func Encode(r Result) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "encode result", err)
	}
	return body, nil
}

// Decode restores a stored result by kind.
func Decode(kind domain.AnalysisKind, body []byte) (Result, error) {
	var (
		result Result
		err    error
	)
	switch kind {
	case domain.AnalysisDensityGrid:
		var r DensityResult
		err = json.Unmarshal(body, &r)
		result = r
	case domain.AnalysisCongestionLevel:
		var r CongestionResult
		err = json.Unmarshal(body, &r)
		result = r
	case domain.AnalysisSummaryStats:
		var r SummaryResult
		err = json.Unmarshal(body, &r)
		result = r
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unsupported analysis kind")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "decode result", err)
	}
	return result, nil
}
