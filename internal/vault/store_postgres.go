package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"geovault/internal/dataset"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
	txcontext "geovault/pkg/platform/tx"
)

// PostgresStore persists sealed containers with records as JSONB. Sealing and
// reading stay in this package; nothing outside can select the records
// column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, container Container) error {
	body, err := json.Marshal(container.records)
	if err != nil {
		return fmt.Errorf("marshal sealed records: %w", err)
	}

	exec := txcontext.Pick(ctx, s.db)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO containers (id, owner_id, label, record_count, driver_count, span_start, span_end, records, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(container.Meta.ID), uuid.UUID(container.Meta.OwnerID), container.Meta.Label,
		container.Meta.RecordCount, container.Meta.DriverCount,
		container.Meta.SpanStart, container.Meta.SpanEnd, body, container.Meta.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return dErrors.New(dErrors.CodeInvalidState, "container already sealed")
	}
	if err != nil {
		return fmt.Errorf("save container: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.ContainerID) (Container, error) {
	exec := txcontext.Pick(ctx, s.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, owner_id, label, record_count, driver_count, span_start, span_end, records, created_at
		FROM containers WHERE id = $1`, uuid.UUID(id))

	var (
		meta Metadata
		cid  uuid.UUID
		oid  uuid.UUID
		body []byte
	)
	err := row.Scan(&cid, &oid, &meta.Label, &meta.RecordCount, &meta.DriverCount,
		&meta.SpanStart, &meta.SpanEnd, &body, &meta.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Container{}, ErrNotFound
	}
	if err != nil {
		return Container{}, fmt.Errorf("find container: %w", err)
	}
	meta.ID = domain.ContainerID(cid)
	meta.OwnerID = domain.OwnerID(oid)

	var records []dataset.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return Container{}, fmt.Errorf("unmarshal sealed records: %w", err)
	}
	return Container{Meta: meta, records: records}, nil
}

func (s *PostgresStore) Meta(ctx context.Context, id domain.ContainerID) (Metadata, error) {
	exec := txcontext.Pick(ctx, s.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, owner_id, label, record_count, driver_count, span_start, span_end, created_at
		FROM containers WHERE id = $1`, uuid.UUID(id))

	meta, err := scanMeta(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Metadata{}, ErrNotFound
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("container metadata: %w", err)
	}
	return meta, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Metadata, error) {
	exec := txcontext.Pick(ctx, s.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, owner_id, label, record_count, driver_count, span_start, span_end, created_at
		FROM containers ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	defer rows.Close()

	var out []Metadata
	for rows.Next() {
		meta, err := scanMeta(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan container metadata: %w", err)
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func scanMeta(scan func(dest ...any) error) (Metadata, error) {
	var (
		meta Metadata
		cid  uuid.UUID
		oid  uuid.UUID
	)
	err := scan(&cid, &oid, &meta.Label, &meta.RecordCount, &meta.DriverCount,
		&meta.SpanStart, &meta.SpanEnd, &meta.CreatedAt)
	if err != nil {
		return Metadata{}, err
	}
	meta.ID = domain.ContainerID(cid)
	meta.OwnerID = domain.OwnerID(oid)
	return meta, nil
}
