package vault

import (
	"context"
	"log/slog"

	"geovault/internal/dataset"
	"geovault/internal/platform/metrics"
	"geovault/pkg/domain"
	audit "geovault/pkg/platform/audit"
	"geovault/pkg/requestcontext"
)

// Service is the sealing and lookup surface for containers. Sealing is
// fail-closed on the audit trail: a container whose creation cannot be
// recorded is not created.
type Service struct {
	store   Store
	cache   *MetadataCache
	audit   *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithCache fronts Describe with a Redis metadata cache.
func WithCache(cache *MetadataCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics records sealing counters.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the vault service.
func NewService(store Store, auditPub *audit.Publisher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{store: store, audit: auditPub, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seal validates a batch and wraps it into a new immutable container. The
// returned metadata is all the owner (or anyone else) gets back; the records
// themselves are no longer directly observable.
func (s *Service) Seal(ctx context.Context, owner domain.OwnerID, label string, records []dataset.RawRecord) (Metadata, error) {
	if err := dataset.ValidateBatch(records); err != nil {
		return Metadata{}, err
	}

	start, end := dataset.Span(records)
	meta := Metadata{
		ID:          domain.NewContainerID(),
		OwnerID:     owner,
		Label:       label,
		RecordCount: len(records),
		DriverCount: dataset.DriverCount(records),
		SpanStart:   start,
		SpanEnd:     end,
		CreatedAt:   requestcontext.Now(ctx),
	}

	// The trail entry lands before the container does; an orphaned trail
	// entry is acceptable, an unrecorded container is not.
	if err := s.audit.Emit(ctx, audit.Event{
		Action:        audit.ActionContainerSealed,
		Actor:         owner.String(),
		Role:          string(requestcontext.RoleOwner),
		ContainerID:   meta.ID.String(),
		CorrelationID: requestcontext.RequestID(ctx),
	}); err != nil {
		return Metadata{}, err
	}

	if err := s.store.Save(ctx, newContainer(meta, records)); err != nil {
		return Metadata{}, err
	}

	if s.metrics != nil {
		s.metrics.ContainersSealed.Inc()
	}
	s.logger.InfoContext(ctx, "container sealed",
		"container_id", meta.ID.String(),
		"record_count", meta.RecordCount,
		"driver_count", meta.DriverCount,
	)

	if s.cache != nil {
		s.cache.Set(ctx, meta)
	}
	return meta, nil
}

// Describe returns container metadata, consulting the cache first.
func (s *Service) Describe(ctx context.Context, id domain.ContainerID) (Metadata, error) {
	if s.cache != nil {
		if meta, ok := s.cache.Get(ctx, id); ok {
			return meta, nil
		}
	}
	meta, err := s.store.Meta(ctx, id)
	if err != nil {
		return Metadata{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, meta)
	}
	return meta, nil
}

// List returns metadata for all sealed containers.
func (s *Service) List(ctx context.Context) ([]Metadata, error) {
	return s.store.List(ctx)
}

// Compute is the only read path over sealed records. The governance layer
// calls it with the analysis closure for an approved request; fn receives a
// defensive copy and must not retain it.
func (s *Service) Compute(ctx context.Context, id domain.ContainerID, fn func(records []dataset.RawRecord) error) error {
	container, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	return fn(container.snapshot())
}
