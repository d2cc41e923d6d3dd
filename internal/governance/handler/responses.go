package handler

import (
	"time"

	"geovault/internal/analysis"
	"geovault/internal/governance"
)

// RequestResponse is the HTTP view of an analysis request. The stored result
// is never embedded here; it is fetched through the result endpoint, which
// re-checks state.
type RequestResponse struct {
	ID           string          `json:"id"`
	ContainerID  string          `json:"container_id"`
	ResearcherID string          `json:"researcher_id"`
	Kind         string          `json:"kind"`
	Params       analysis.Params `json:"params"`
	State        string          `json:"state"`
	Reason       string          `json:"reason,omitempty"`
	DecidedBy    string          `json:"decided_by,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	DecidedAt    *time.Time      `json:"decided_at,omitempty"`
	ExecutedAt   *time.Time      `json:"executed_at,omitempty"`
}

// FromRequest converts a domain request to its HTTP representation.
func FromRequest(req governance.AnalysisRequest) RequestResponse {
	return RequestResponse{
		ID:           req.ID.String(),
		ContainerID:  req.ContainerID.String(),
		ResearcherID: req.ResearcherID.String(),
		Kind:         req.Kind.String(),
		Params:       req.Params,
		State:        string(req.State),
		Reason:       req.Reason,
		DecidedBy:    req.DecidedBy,
		SubmittedAt:  req.SubmittedAt,
		DecidedAt:    req.DecidedAt,
		ExecutedAt:   req.ExecutedAt,
	}
}

// ListResponse wraps the request collection.
type ListResponse struct {
	Requests []RequestResponse `json:"requests"`
}

func FromRequestList(reqs []governance.AnalysisRequest) ListResponse {
	out := ListResponse{Requests: make([]RequestResponse, 0, len(reqs))}
	for _, req := range reqs {
		out.Requests = append(out.Requests, FromRequest(req))
	}
	return out
}

// ResultResponse carries a released aggregate.
type ResultResponse struct {
	RequestID string          `json:"request_id"`
	Kind      string          `json:"kind"`
	Result    analysis.Result `json:"result"`
}
