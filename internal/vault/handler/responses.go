package handler

import (
	"time"

	"geovault/internal/vault"
)

// ContainerResponse is the public view of a sealed container. Only metadata
// is ever exposed; the records stay inside the vault.
type ContainerResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Label       string    `json:"label"`
	RecordCount int       `json:"record_count"`
	DriverCount int       `json:"driver_count"`
	SpanStart   time.Time `json:"span_start"`
	SpanEnd     time.Time `json:"span_end"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromMetadata converts vault metadata to its HTTP representation.
func FromMetadata(meta vault.Metadata) ContainerResponse {
	return ContainerResponse{
		ID:          meta.ID.String(),
		OwnerID:     meta.OwnerID.String(),
		Label:       meta.Label,
		RecordCount: meta.RecordCount,
		DriverCount: meta.DriverCount,
		SpanStart:   meta.SpanStart,
		SpanEnd:     meta.SpanEnd,
		CreatedAt:   meta.CreatedAt,
	}
}

// ListResponse wraps the container collection.
type ListResponse struct {
	Containers []ContainerResponse `json:"containers"`
}

// FromMetadataList converts a metadata slice, keeping an empty list over
// null in the JSON output.
func FromMetadataList(metas []vault.Metadata) ListResponse {
	out := ListResponse{Containers: make([]ContainerResponse, 0, len(metas))}
	for _, meta := range metas {
		out.Containers = append(out.Containers, FromMetadata(meta))
	}
	return out
}
