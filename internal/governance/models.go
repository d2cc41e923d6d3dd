// Package governance is the domain role: it registers analysis requests
// against sealed containers, tracks their approval state, and executes
// approved analyses. Only aggregate results that clear the release guard ever
// leave this package.
package governance

import (
	"time"

	"geovault/internal/analysis"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// State is the lifecycle of an analysis request.
//
//	submitted -> approved -> executed
//	submitted -> denied
//	approved  -> denied   (revoked before execution)
//
// executed and denied are terminal for decisions; executed requests keep
// their result.
type State string

const (
	StateSubmitted State = "submitted"
	StateApproved  State = "approved"
	StateDenied    State = "denied"
	StateExecuted  State = "executed"
)

// AnalysisRequest binds a researcher's chosen computation to a container and
// carries its approval state.
type AnalysisRequest struct {
	ID           domain.RequestID
	ContainerID  domain.ContainerID
	ResearcherID domain.ResearcherID
	Kind         domain.AnalysisKind
	Params       analysis.Params
	State        State
	// Reason explains a denial, whether by policy or by the domain operator.
	Reason    string
	DecidedBy string
	// Result holds the encoded aggregate once executed. It is released only
	// through Service.Result, which re-checks state.
	Result      []byte
	SubmittedAt time.Time
	DecidedAt   *time.Time
	ExecutedAt  *time.Time
}

// ErrNotFound keeps storage-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "analysis request not found")

// canApprove reports whether an approval decision may be applied. Approving
// an already approved request is an idempotent no-op.
func (r AnalysisRequest) canApprove() error {
	switch r.State {
	case StateSubmitted, StateApproved:
		return nil
	case StateExecuted:
		return dErrors.New(dErrors.CodeInvalidState, "request already executed")
	case StateDenied:
		return dErrors.New(dErrors.CodeInvalidState, "request already denied")
	}
	return dErrors.New(dErrors.CodeInternal, "unknown request state")
}

// canDeny reports whether a denial may be applied. Denying an approved but
// not yet executed request revokes the approval; denying a denied request is
// an idempotent no-op.
func (r AnalysisRequest) canDeny() error {
	switch r.State {
	case StateSubmitted, StateApproved, StateDenied:
		return nil
	case StateExecuted:
		return dErrors.New(dErrors.CodeInvalidState, "request already executed")
	}
	return dErrors.New(dErrors.CodeInternal, "unknown request state")
}

// canExecute admits only approved requests to the vault.
func (r AnalysisRequest) canExecute() error {
	switch r.State {
	case StateApproved:
		return nil
	case StateSubmitted:
		return dErrors.New(dErrors.CodeInvalidState, "request awaiting approval")
	case StateDenied:
		return dErrors.New(dErrors.CodeInvalidState, "request was denied")
	case StateExecuted:
		return dErrors.New(dErrors.CodeInvalidState, "request already executed")
	}
	return dErrors.New(dErrors.CodeInternal, "unknown request state")
}
