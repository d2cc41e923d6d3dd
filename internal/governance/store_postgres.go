package governance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
	txcontext "geovault/pkg/platform/tx"
)

// PostgresStore persists analysis requests in the analysis_requests table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, container_id, researcher_id, kind, params, state, reason, decided_by, result, submitted_at, decided_at, executed_at`

func (s *PostgresStore) Save(ctx context.Context, req AnalysisRequest) error {
	params, err := json.Marshal(req.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	exec := txcontext.Pick(ctx, s.db)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO analysis_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.ID.String(), req.ContainerID.String(), req.ResearcherID.String(),
		req.Kind.String(), params, string(req.State), req.Reason, req.DecidedBy,
		nullBytes(req.Result), req.SubmittedAt, req.DecidedAt, req.ExecutedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return dErrors.New(dErrors.CodeInvalidState, "analysis request already exists")
		}
		return fmt.Errorf("insert analysis request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, req AnalysisRequest) error {
	exec := txcontext.Pick(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE analysis_requests
		SET state = $2, reason = $3, decided_by = $4, result = $5, decided_at = $6, executed_at = $7
		WHERE id = $1`,
		req.ID.String(), string(req.State), req.Reason, req.DecidedBy,
		nullBytes(req.Result), req.DecidedAt, req.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("update analysis request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis request: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.RequestID) (AnalysisRequest, error) {
	exec := txcontext.Pick(ctx, s.db)
	row := exec.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM analysis_requests WHERE id = $1`, id.String())
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AnalysisRequest{}, ErrNotFound
	}
	if err != nil {
		return AnalysisRequest{}, fmt.Errorf("find analysis request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) ListByContainer(ctx context.Context, id domain.ContainerID) ([]AnalysisRequest, error) {
	return s.list(ctx, `
		SELECT `+requestColumns+` FROM analysis_requests
		WHERE container_id = $1 ORDER BY submitted_at, id`, id.String())
}

func (s *PostgresStore) List(ctx context.Context) ([]AnalysisRequest, error) {
	return s.list(ctx, `
		SELECT `+requestColumns+` FROM analysis_requests ORDER BY submitted_at, id`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]AnalysisRequest, error) {
	exec := txcontext.Pick(ctx, s.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analysis requests: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analysis requests: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (AnalysisRequest, error) {
	var (
		req                         AnalysisRequest
		id, containerID, researcher string
		kind, state                 string
		params                      []byte
		result                      []byte
		decidedAt, executedAt       sql.NullTime
	)
	err := row.Scan(&id, &containerID, &researcher, &kind, &params, &state,
		&req.Reason, &req.DecidedBy, &result, &req.SubmittedAt, &decidedAt, &executedAt)
	if err != nil {
		return AnalysisRequest{}, err
	}
	if req.ID, err = domain.ParseRequestID(id); err != nil {
		return AnalysisRequest{}, err
	}
	if req.ContainerID, err = domain.ParseContainerID(containerID); err != nil {
		return AnalysisRequest{}, err
	}
	if req.ResearcherID, err = domain.ParseResearcherID(researcher); err != nil {
		return AnalysisRequest{}, err
	}
	if req.Kind, err = domain.ParseAnalysisKind(kind); err != nil {
		return AnalysisRequest{}, err
	}
	if err = json.Unmarshal(params, &req.Params); err != nil {
		return AnalysisRequest{}, fmt.Errorf("unmarshal params: %w", err)
	}
	req.State = State(state)
	req.Result = result
	if decidedAt.Valid {
		t := decidedAt.Time
		req.DecidedAt = &t
	}
	if executedAt.Valid {
		t := executedAt.Time
		req.ExecutedAt = &t
	}
	return req, nil
}

// nullBytes maps an absent result to SQL NULL instead of an empty JSON blob.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
