package governance

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"geovault/internal/analysis"
	"geovault/internal/dataset"
	"geovault/internal/platform/metrics"
	"geovault/internal/vault"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
	"geovault/pkg/platform/audit"
	"geovault/pkg/requestcontext"
)

// ContainerVault is the slice of the vault the governance layer needs:
// metadata for screening and the single mediated read path for execution.
type ContainerVault interface {
	Describe(ctx context.Context, id domain.ContainerID) (vault.Metadata, error)
	Compute(ctx context.Context, id domain.ContainerID, fn func(records []dataset.RawRecord) error) error
}

// Service runs the request lifecycle. Every transition is written to the
// audit trail before it is applied; an unrecordable transition does not
// happen.
type Service struct {
	store   Store
	vault   ContainerVault
	catalog *analysis.Catalog
	policy  Policy
	audit   *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

type ServiceOption func(*Service)

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, cv ContainerVault, catalog *analysis.Catalog, policy Policy, auditPub *audit.Publisher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		vault:   cv,
		catalog: catalog,
		policy:  policy,
		audit:   auditPub,
		logger:  logger,
		tracer:  otel.Tracer("geovault/governance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit registers a researcher's analysis request against a container.
// Submissions that trip a policy rule are recorded already denied, with the
// tripped rule as the reason, so the trail shows every attempt.
func (s *Service) Submit(ctx context.Context, containerID domain.ContainerID, researcher domain.ResearcherID, kind domain.AnalysisKind, params analysis.Params) (AnalysisRequest, error) {
	meta, err := s.vault.Describe(ctx, containerID)
	if err != nil {
		return AnalysisRequest{}, err
	}

	now := requestcontext.Now(ctx)
	req := AnalysisRequest{
		ID:           domain.NewRequestID(),
		ContainerID:  containerID,
		ResearcherID: researcher,
		Kind:         kind,
		Params:       params,
		State:        StateSubmitted,
		SubmittedAt:  now,
	}
	if reason := s.policy.Screen(kind, params, meta); reason != "" {
		req.State = StateDenied
		req.Reason = reason
		req.DecidedBy = "policy"
		req.DecidedAt = &now
	}

	if err := s.emit(ctx, audit.Event{
		Action:      audit.ActionRequestSubmitted,
		ContainerID: containerID.String(),
		RequestID:   req.ID.String(),
	}); err != nil {
		return AnalysisRequest{}, err
	}
	if req.State == StateDenied {
		if err := s.emit(ctx, audit.Event{
			Action:      audit.ActionRequestDenied,
			ContainerID: containerID.String(),
			RequestID:   req.ID.String(),
			Decision:    string(StateDenied),
			Reason:      req.Reason,
		}); err != nil {
			return AnalysisRequest{}, err
		}
	}
	if err := s.store.Save(ctx, req); err != nil {
		return AnalysisRequest{}, err
	}

	if s.metrics != nil {
		s.metrics.RequestsSubmitted.Inc()
		if req.State == StateDenied {
			s.metrics.RequestsDecided.WithLabelValues(string(StateDenied)).Inc()
		}
	}
	s.logger.InfoContext(ctx, "analysis request submitted",
		"request_id", req.ID, "container_id", containerID, "kind", kind, "state", req.State)
	return req, nil
}

// Approve marks a submitted request as approved. Approving twice is a no-op;
// executed and denied requests cannot be approved.
func (s *Service) Approve(ctx context.Context, id domain.RequestID) (AnalysisRequest, error) {
	return s.decide(ctx, id, StateApproved)
}

// Deny marks a request as denied with a reason. A standing approval may be
// revoked this way as long as the request has not executed.
func (s *Service) Deny(ctx context.Context, id domain.RequestID, reason string) (AnalysisRequest, error) {
	return s.decide(ctx, id, StateDenied, reason)
}

func (s *Service) decide(ctx context.Context, id domain.RequestID, target State, reason ...string) (AnalysisRequest, error) {
	req, err := s.store.Find(ctx, id)
	if err != nil {
		return AnalysisRequest{}, err
	}

	action := audit.ActionRequestApproved
	if target == StateApproved {
		if err := req.canApprove(); err != nil {
			return AnalysisRequest{}, err
		}
		if req.State == StateApproved {
			return req, nil
		}
	} else {
		if err := req.canDeny(); err != nil {
			return AnalysisRequest{}, err
		}
		if req.State == StateDenied {
			return req, nil
		}
		action = audit.ActionRequestDenied
		req.Reason = reason[0]
	}

	now := requestcontext.Now(ctx)
	req.State = target
	req.DecidedBy = requestcontext.Actor(ctx)
	req.DecidedAt = &now

	if err := s.emit(ctx, audit.Event{
		Action:      action,
		ContainerID: req.ContainerID.String(),
		RequestID:   req.ID.String(),
		Decision:    string(target),
		Reason:      req.Reason,
	}); err != nil {
		return AnalysisRequest{}, err
	}
	if err := s.store.Update(ctx, req); err != nil {
		return AnalysisRequest{}, err
	}

	if s.metrics != nil {
		s.metrics.RequestsDecided.WithLabelValues(string(target)).Inc()
	}
	s.logger.InfoContext(ctx, "analysis request decided",
		"request_id", req.ID, "decision", target, "decided_by", req.DecidedBy)
	return req, nil
}

// Execute runs an approved request inside the vault and releases the
// aggregate result. The release guard inspects the result against the raw
// records before anything leaves; a blocked release leaves the request in
// the approved state for review.
func (s *Service) Execute(ctx context.Context, id domain.RequestID) (analysis.Result, error) {
	ctx, span := s.tracer.Start(ctx, "governance.Execute",
		trace.WithAttributes(attribute.String("request.id", id.String())))
	defer span.End()

	req, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.canExecute(); err != nil {
		return nil, err
	}

	start := requestcontext.Now(ctx)
	var result analysis.Result
	err = s.vault.Compute(ctx, req.ContainerID, func(records []dataset.RawRecord) error {
		r, err := s.catalog.Run(req.Kind, records, req.Params)
		if err != nil {
			return err
		}
		if err := analysis.CheckRelease(r, records); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeReleaseBlocked) {
			if s.metrics != nil {
				s.metrics.ReleasesBlocked.Inc()
			}
			if emitErr := s.emit(ctx, audit.Event{
				Action:      audit.ActionReleaseBlocked,
				ContainerID: req.ContainerID.String(),
				RequestID:   req.ID.String(),
				Reason:      err.Error(),
			}); emitErr != nil {
				return nil, emitErr
			}
			s.logger.WarnContext(ctx, "release blocked", "request_id", req.ID, "reason", err)
		}
		return nil, err
	}

	encoded, err := analysis.Encode(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	now := requestcontext.Now(ctx)
	req.State = StateExecuted
	req.Result = encoded
	req.ExecutedAt = &now

	if err := s.emit(ctx, audit.Event{
		Action:      audit.ActionRequestExecuted,
		ContainerID: req.ContainerID.String(),
		RequestID:   req.ID.String(),
	}); err != nil {
		return nil, err
	}
	if err := s.emit(ctx, audit.Event{
		Action:      audit.ActionResultReleased,
		ContainerID: req.ContainerID.String(),
		RequestID:   req.ID.String(),
	}); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, req); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RequestsExecuted.Inc()
		s.metrics.ExecutionDuration.Observe(requestcontext.Now(ctx).Sub(start).Seconds())
	}
	s.logger.InfoContext(ctx, "analysis request executed", "request_id", req.ID, "kind", req.Kind)
	return result, nil
}

// Get returns a request by ID.
func (s *Service) Get(ctx context.Context, id domain.RequestID) (AnalysisRequest, error) {
	return s.store.Find(ctx, id)
}

// List returns all requests ordered by submission time.
func (s *Service) List(ctx context.Context) ([]AnalysisRequest, error) {
	return s.store.List(ctx)
}

// ListByContainer returns a container's requests ordered by submission time.
func (s *Service) ListByContainer(ctx context.Context, id domain.ContainerID) ([]AnalysisRequest, error) {
	return s.store.ListByContainer(ctx, id)
}

// Result returns the released aggregate of an executed request.
func (s *Service) Result(ctx context.Context, id domain.RequestID) (analysis.Result, error) {
	req, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.State != StateExecuted {
		return nil, dErrors.New(dErrors.CodeInvalidState, "request has no released result")
	}
	return analysis.Decode(req.Kind, req.Result)
}

// emit stamps actor identity from the context and writes the event through
// the fail-closed publisher. The trail entry is written before the state
// change is stored; an orphaned trail entry is acceptable, a silent
// transition is not.
func (s *Service) emit(ctx context.Context, event audit.Event) error {
	event.Actor = requestcontext.Actor(ctx)
	event.Role = string(requestcontext.ActorRole(ctx))
	event.CorrelationID = requestcontext.RequestID(ctx)
	return s.audit.Emit(ctx, event)
}
