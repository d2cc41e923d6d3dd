package governance

import (
	"context"

	"geovault/pkg/domain"
)

// Store persists analysis requests. Save rejects duplicate IDs; Update
// replaces an existing request and fails with ErrNotFound when absent.
type Store interface {
	Save(ctx context.Context, req AnalysisRequest) error
	Update(ctx context.Context, req AnalysisRequest) error
	Find(ctx context.Context, id domain.RequestID) (AnalysisRequest, error)
	ListByContainer(ctx context.Context, id domain.ContainerID) ([]AnalysisRequest, error)
	List(ctx context.Context) ([]AnalysisRequest, error)
}
