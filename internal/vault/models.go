// Package vault seals raw record batches into opaque containers. A container
// exposes metadata only; the records inside are reachable through exactly one
// path, Service.Compute, which the governance layer invokes for approved
// analyses. Containers are immutable once sealed.
package vault

import (
	"time"

	"geovault/internal/dataset"
	"geovault/pkg/domain"
)

// Metadata is the externally visible surface of a sealed container. It never
// includes record values.
type Metadata struct {
	ID          domain.ContainerID `json:"id"`
	OwnerID     domain.OwnerID     `json:"owner_id"`
	Label       string             `json:"label"`
	RecordCount int                `json:"record_count"`
	DriverCount int                `json:"driver_count"`
	SpanStart   time.Time          `json:"span_start"`
	SpanEnd     time.Time          `json:"span_end"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Container pairs metadata with the sealed records. The records field is
// unexported; only this package can reach it, and it hands out copies.
type Container struct {
	Meta    Metadata
	records []dataset.RawRecord
}

// newContainer seals a validated batch. Callers outside the package go
// through Service.Seal.
func newContainer(meta Metadata, records []dataset.RawRecord) Container {
	sealed := make([]dataset.RawRecord, len(records))
	copy(sealed, records)
	return Container{Meta: meta, records: sealed}
}

// snapshot returns a defensive copy of the sealed records.
func (c Container) snapshot() []dataset.RawRecord {
	out := make([]dataset.RawRecord, len(c.records))
	copy(out, c.records)
	return out
}
