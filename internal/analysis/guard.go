package analysis

import (
	"geovault/internal/dataset"
	dErrors "geovault/pkg/domain-errors"
)

// CheckRelease verifies that no input (lat, lon) tuple appears verbatim among
// a result's released values. It runs after every execution, immediately
// before the result leaves the domain; a violation withholds the result.
//
// This is an engineering control on result shape, not a differential-privacy
// guarantee.
func CheckRelease(result Result, records []dataset.RawRecord) error {
	released := make(map[float64]struct{})
	for _, v := range result.ReleasedValues() {
		released[v] = struct{}{}
	}

	for _, r := range records {
		_, latLeaked := released[r.Latitude]
		_, lonLeaked := released[r.Longitude]
		if latLeaked && lonLeaked {
			return dErrors.New(dErrors.CodeReleaseBlocked, "result reproduces an input coordinate pair")
		}
	}
	return nil
}
