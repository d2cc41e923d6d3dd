// Package dataset holds the raw GPS trace model, batch validation, and the
// synthetic trace generators used by the demo. Raw records exist outside a
// sealed container only in this package and in the vault that seals them.
package dataset

import (
	"strconv"
	"time"

	dErrors "geovault/pkg/domain-errors"
)

// RawRecord is a single GPS sample belonging to a data owner.
type RawRecord struct {
	DriverID  int       `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidateBatch runs shape checks over an ingest batch. It catches malformed
// coordinates before sealing, nothing more; it is not a data quality layer.
func ValidateBatch(records []RawRecord) error {
	if len(records) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "batch must contain at least one record")
	}
	for i, r := range records {
		if r.Latitude < -90 || r.Latitude > 90 {
			return dErrors.New(dErrors.CodeBadRequest, "latitude out of range at record "+strconv.Itoa(i))
		}
		if r.Longitude < -180 || r.Longitude > 180 {
			return dErrors.New(dErrors.CodeBadRequest, "longitude out of range at record "+strconv.Itoa(i))
		}
		if r.Timestamp.IsZero() {
			return dErrors.New(dErrors.CodeBadRequest, "missing timestamp at record "+strconv.Itoa(i))
		}
	}
	return nil
}

// Span returns the covered time range of a batch.
func Span(records []RawRecord) (start, end time.Time) {
	for _, r := range records {
		if start.IsZero() || r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if end.IsZero() || r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	return start, end
}

// DriverCount returns the number of distinct drivers in a batch.
func DriverCount(records []RawRecord) int {
	seen := make(map[int]struct{}, len(records))
	for _, r := range records {
		seen[r.DriverID] = struct{}{}
	}
	return len(seen)
}

