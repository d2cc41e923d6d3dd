package domain

import dErrors "geovault/pkg/domain-errors"

// AnalysisKind identifies a registered aggregate computation. Researchers can
// only request kinds from this allowlist; the catalog maps each kind to its
// implementation.
//
// Usage: construct via ParseAnalysisKind at trust boundaries; direct casting
// bypasses validation.
type AnalysisKind string

const (
	// AnalysisDensityGrid bins coordinates into a grid and reports cell
	// counts plus hotspot cells.
	AnalysisDensityGrid AnalysisKind = "density_grid"
	// AnalysisCongestionLevel classifies the spatial spread of a trace set
	// as congested or free-flowing.
	AnalysisCongestionLevel AnalysisKind = "congestion_level"
	// AnalysisSummaryStats reports record/driver counts and mean position.
	AnalysisSummaryStats AnalysisKind = "summary_stats"
)

// validAnalysisKinds is the single source of truth for supported kinds.
var validAnalysisKinds = map[AnalysisKind]bool{
	AnalysisDensityGrid:     true,
	AnalysisCongestionLevel: true,
	AnalysisSummaryStats:    true,
}

// ParseAnalysisKind constructs an AnalysisKind from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseAnalysisKind(s string) (AnalysisKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "analysis kind cannot be empty")
	}
	k := AnalysisKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported analysis kind")
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported enum values.
func (k AnalysisKind) IsValid() bool {
	return validAnalysisKinds[k]
}

// String returns the string representation of the kind.
func (k AnalysisKind) String() string {
	return string(k)
}
