package handler

import (
	"strings"

	"geovault/internal/analysis"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /requests.
type SubmitRequest struct {
	ContainerID  string          `json:"container_id"`
	ResearcherID string          `json:"researcher_id"`
	Kind         string          `json:"kind"`
	Params       analysis.Params `json:"params"`

	parsedContainer  domain.ContainerID
	parsedResearcher domain.ResearcherID
	parsedKind       domain.AnalysisKind
}

// Validate validates and parses the request.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	container, err := domain.ParseContainerID(r.ContainerID)
	if err != nil {
		return err
	}
	researcher, err := domain.ParseResearcherID(r.ResearcherID)
	if err != nil {
		return err
	}
	kind, err := domain.ParseAnalysisKind(r.Kind)
	if err != nil {
		return err
	}
	if r.Params.GridSize < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "grid_size cannot be negative")
	}
	r.parsedContainer = container
	r.parsedResearcher = researcher
	r.parsedKind = kind
	return nil
}

func (r *SubmitRequest) ParsedContainer() domain.ContainerID   { return r.parsedContainer }
func (r *SubmitRequest) ParsedResearcher() domain.ResearcherID { return r.parsedResearcher }
func (r *SubmitRequest) ParsedKind() domain.AnalysisKind       { return r.parsedKind }

// DenyRequest is the HTTP request body for POST /requests/{requestID}/deny.
type DenyRequest struct {
	Reason string `json:"reason"`
}

// Validate requires a reason so denials are always explained in the trail.
func (r *DenyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	if len(r.Reason) > 512 {
		return dErrors.New(dErrors.CodeInvalidInput, "reason must be at most 512 characters")
	}
	return nil
}
