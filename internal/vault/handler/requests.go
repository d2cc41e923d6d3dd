package handler

import (
	"strings"

	"geovault/internal/dataset"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

const maxBatchSize = 100000

// SealRequest is the HTTP request body for POST /containers.
type SealRequest struct {
	OwnerID string              `json:"owner_id"`
	Label   string              `json:"label"`
	Records []dataset.RawRecord `json:"records"`

	parsedOwner domain.OwnerID
}

// Validate checks the request shape. Record-level validation happens in the
// vault when the batch is sealed.
func (r *SealRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "label is required")
	}
	if len(r.Label) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "label must be at most 128 characters")
	}
	if len(r.Records) > maxBatchSize {
		return dErrors.New(dErrors.CodeInvalidInput, "record batch is too large")
	}
	owner, err := domain.ParseOwnerID(r.OwnerID)
	if err != nil {
		return err
	}
	r.parsedOwner = owner
	return nil
}

// ParsedOwner returns the owner ID parsed during Validate.
func (r *SealRequest) ParsedOwner() domain.OwnerID {
	return r.parsedOwner
}
