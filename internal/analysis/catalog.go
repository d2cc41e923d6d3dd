package analysis

import (
	"geovault/internal/dataset"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// Config carries the governance policy knobs the catalog enforces during
// execution.
type Config struct {
	// MinAggregateCount suppresses density cells aggregating fewer records.
	MinAggregateCount int
}

// Catalog maps each registered analysis kind to its implementation. It is the
// Go rendition of "researcher-submitted code": researchers pick from this
// allowlist rather than shipping arbitrary functions into the domain.
type Catalog struct {
	cfg Config
}

// NewCatalog builds the catalog with the given policy configuration.
func NewCatalog(cfg Config) *Catalog {
	return &Catalog{cfg: cfg}
}

// Run executes the named analysis over the records.
func (c *Catalog) Run(kind domain.AnalysisKind, records []dataset.RawRecord, params Params) (Result, error) {
	switch kind {
	case domain.AnalysisDensityGrid:
		return DensityGrid(records, params.GridSize, c.cfg.MinAggregateCount)
	case domain.AnalysisCongestionLevel:
		return Congestion(records)
	case domain.AnalysisSummaryStats:
		return Summary(records)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unsupported analysis kind")
	}
}
