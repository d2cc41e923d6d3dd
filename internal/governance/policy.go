package governance

import (
	"fmt"

	"geovault/internal/analysis"
	"geovault/internal/vault"
	"geovault/pkg/domain"
)

// Policy holds the pure screening rules applied at submission time. A
// submission that trips a rule is recorded as an immediately denied request
// rather than rejected outright, so the trail shows what was asked for.
type Policy struct {
	// MaxGridSize caps the density grid resolution a researcher may request.
	// Finer grids narrow each cell toward individual positions.
	MaxGridSize int
	// MinAggregateCount is the smallest dataset an analysis may summarize.
	MinAggregateCount int
}

// Screen evaluates a submission against the container's metadata. It returns
// a non-empty reason when the request must be auto-denied. Rules are checked
// in order and the first violation wins.
func (p Policy) Screen(kind domain.AnalysisKind, params analysis.Params, meta vault.Metadata) string {
	if !kind.IsValid() {
		return fmt.Sprintf("analysis kind %q is not in the catalog", kind)
	}
	if params.GridSize > p.MaxGridSize {
		return fmt.Sprintf("grid size %d exceeds the cap of %d", params.GridSize, p.MaxGridSize)
	}
	if meta.RecordCount < p.MinAggregateCount {
		return fmt.Sprintf("container holds %d records, below the aggregation floor of %d", meta.RecordCount, p.MinAggregateCount)
	}
	return ""
}
