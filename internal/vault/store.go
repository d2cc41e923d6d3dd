package vault

import (
	"context"

	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
)

// Store persists sealed containers. Implementations are interface-driven so
// the in-memory and Postgres variants swap without rewiring business code.
type Store interface {
	// Save persists a newly sealed container. It fails with CodeInvalidState
	// when the ID already exists; containers are never overwritten.
	Save(ctx context.Context, container Container) error
	// Find loads a full container, sealed records included. Only this
	// package calls it.
	Find(ctx context.Context, id domain.ContainerID) (Container, error)
	// Meta loads metadata only.
	Meta(ctx context.Context, id domain.ContainerID) (Metadata, error)
	// List returns metadata for every sealed container.
	List(ctx context.Context) ([]Metadata, error)
}

// ErrNotFound keeps storage-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "container not found")
