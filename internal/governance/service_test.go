package governance

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geovault/internal/analysis"
	"geovault/internal/dataset"
	"geovault/internal/vault"
	"geovault/pkg/domain"
	dErrors "geovault/pkg/domain-errors"
	audit "geovault/pkg/platform/audit"
	auditmem "geovault/pkg/platform/audit/store/memory"
	"geovault/pkg/requestcontext"
)

type testEnv struct {
	svc        *Service
	vault      *vault.Service
	auditStore *auditmem.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	auditStore := auditmem.New()
	pub := audit.NewPublisher(auditStore)
	vaultSvc := vault.NewService(vault.NewInMemoryStore(), pub, logger)
	policy := Policy{MaxGridSize: 50, MinAggregateCount: 3}
	catalog := analysis.NewCatalog(analysis.Config{MinAggregateCount: 3})
	svc := NewService(NewInMemoryStore(), vaultSvc, catalog, policy, pub, logger)
	return &testEnv{svc: svc, vault: vaultSvc, auditStore: auditStore}
}

func (e *testEnv) sealScenario(t *testing.T, scenario dataset.Scenario) domain.ContainerID {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 7))
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	records := dataset.GenerateScenario(rng, scenario, 40, 10, start)
	meta, err := e.vault.Seal(context.Background(), domain.NewOwnerID(), "scenario", records)
	require.NoError(t, err)
	return meta.ID
}

func domainCtx() context.Context {
	return requestcontext.WithActor(context.Background(), "alice", requestcontext.RoleDomain)
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)
	containerID := env.sealScenario(t, dataset.ScenarioJam)
	researcher := domain.NewResearcherID()
	ctx := requestcontext.WithActor(context.Background(), "eve", requestcontext.RoleResearcher)

	t.Run("registers a pending request", func(t *testing.T) {
		req, err := env.svc.Submit(ctx, containerID, researcher, domain.AnalysisCongestionLevel, analysis.Params{})
		require.NoError(t, err)

		assert.Equal(t, StateSubmitted, req.State)
		assert.Equal(t, containerID, req.ContainerID)
		assert.Equal(t, researcher, req.ResearcherID)
		assert.False(t, req.SubmittedAt.IsZero())
		assert.Nil(t, req.DecidedAt)
	})

	t.Run("auto-denies an oversized grid", func(t *testing.T) {
		req, err := env.svc.Submit(ctx, containerID, researcher, domain.AnalysisDensityGrid, analysis.Params{GridSize: 200})
		require.NoError(t, err)

		assert.Equal(t, StateDenied, req.State)
		assert.Equal(t, "policy", req.DecidedBy)
		assert.Contains(t, req.Reason, "exceeds the cap")
		require.NotNil(t, req.DecidedAt)
	})

	t.Run("rejects an unknown container", func(t *testing.T) {
		_, err := env.svc.Submit(ctx, domain.NewContainerID(), researcher, domain.AnalysisSummaryStats, analysis.Params{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestRequestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	containerID := env.sealScenario(t, dataset.ScenarioJam)
	researcher := domain.NewResearcherID()
	ctx := domainCtx()

	submit := func(t *testing.T) AnalysisRequest {
		t.Helper()
		req, err := env.svc.Submit(ctx, containerID, researcher, domain.AnalysisCongestionLevel, analysis.Params{})
		require.NoError(t, err)
		return req
	}

	t.Run("approve then execute releases a result", func(t *testing.T) {
		req := submit(t)

		approved, err := env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, StateApproved, approved.State)
		assert.Equal(t, "alice", approved.DecidedBy)

		result, err := env.svc.Execute(ctx, req.ID)
		require.NoError(t, err)
		congestion, ok := result.(analysis.CongestionResult)
		require.True(t, ok)
		assert.Equal(t, analysis.CongestionHigh, congestion.Level)

		stored, err := env.svc.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, StateExecuted, stored.State)
		require.NotNil(t, stored.ExecutedAt)

		released, err := env.svc.Result(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, result, released)
	})

	t.Run("execute requires approval", func(t *testing.T) {
		req := submit(t)
		_, err := env.svc.Execute(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("execute rejects a denied request", func(t *testing.T) {
		req := submit(t)
		_, err := env.svc.Deny(ctx, req.ID, "not this one")
		require.NoError(t, err)

		_, err = env.svc.Execute(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("execute is one-shot", func(t *testing.T) {
		req := submit(t)
		_, err := env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)
		_, err = env.svc.Execute(ctx, req.ID)
		require.NoError(t, err)

		_, err = env.svc.Execute(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("executed requests cannot be re-decided", func(t *testing.T) {
		req := submit(t)
		_, err := env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)
		_, err = env.svc.Execute(ctx, req.ID)
		require.NoError(t, err)

		_, err = env.svc.Approve(ctx, req.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		_, err = env.svc.Deny(ctx, req.ID, "too late")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("approval can be revoked before execution", func(t *testing.T) {
		req := submit(t)
		_, err := env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)

		denied, err := env.svc.Deny(ctx, req.ID, "changed my mind")
		require.NoError(t, err)
		assert.Equal(t, StateDenied, denied.State)
		assert.Equal(t, "changed my mind", denied.Reason)

		_, err = env.svc.Execute(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		req := submit(t)
		first, err := env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)
		second, err := env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, first.DecidedBy, second.DecidedBy)
		assert.Equal(t, StateApproved, second.State)
	})

	t.Run("result is withheld until execution", func(t *testing.T) {
		req := submit(t)
		_, err := env.svc.Result(ctx, req.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestExecute_ScenariosSeparate(t *testing.T) {
	run := func(t *testing.T, scenario dataset.Scenario) analysis.CongestionResult {
		t.Helper()
		env := newTestEnv(t)
		containerID := env.sealScenario(t, scenario)
		ctx := domainCtx()

		req, err := env.svc.Submit(ctx, containerID, domain.NewResearcherID(), domain.AnalysisCongestionLevel, analysis.Params{})
		require.NoError(t, err)
		_, err = env.svc.Approve(ctx, req.ID)
		require.NoError(t, err)
		result, err := env.svc.Execute(ctx, req.ID)
		require.NoError(t, err)
		congestion, ok := result.(analysis.CongestionResult)
		require.True(t, ok)
		return congestion
	}

	jam := run(t, dataset.ScenarioJam)
	free := run(t, dataset.ScenarioFreeFlow)

	assert.Equal(t, analysis.CongestionHigh, jam.Level)
	assert.Equal(t, analysis.CongestionLow, free.Level)
	assert.NotEqual(t, jam.Level, free.Level)
}

func TestExecute_ResultLeaksNoCoordinates(t *testing.T) {
	env := newTestEnv(t)
	ctx := domainCtx()

	rng := rand.New(rand.NewPCG(11, 11))
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	records := dataset.GenerateScenario(rng, dataset.ScenarioJam, 40, 10, start)
	meta, err := env.vault.Seal(ctx, domain.NewOwnerID(), "leak-check", records)
	require.NoError(t, err)

	for _, kind := range []domain.AnalysisKind{domain.AnalysisDensityGrid, domain.AnalysisCongestionLevel, domain.AnalysisSummaryStats} {
		t.Run(kind.String(), func(t *testing.T) {
			req, err := env.svc.Submit(ctx, meta.ID, domain.NewResearcherID(), kind, analysis.Params{})
			require.NoError(t, err)
			_, err = env.svc.Approve(ctx, req.ID)
			require.NoError(t, err)
			result, err := env.svc.Execute(ctx, req.ID)
			require.NoError(t, err)

			released := make(map[float64]struct{})
			for _, v := range result.ReleasedValues() {
				released[v] = struct{}{}
			}
			for _, rec := range records {
				_, latHit := released[rec.Latitude]
				_, lonHit := released[rec.Longitude]
				assert.False(t, latHit && lonHit, "record coordinates appear verbatim in the released result")
			}
		})
	}
}

func TestExecute_WithholdsResultEchoingCoordinates(t *testing.T) {
	env := newTestEnv(t)
	ctx := domainCtx()

	// Every record at the same point, so the summary means reproduce a
	// record's coordinates exactly and the release guard must refuse.
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	var records []dataset.RawRecord
	for i := 0; i < 4; i++ {
		records = append(records, dataset.RawRecord{
			DriverID:  i,
			Latitude:  40.7128,
			Longitude: -74.0060,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
		})
	}
	meta, err := env.vault.Seal(ctx, domain.NewOwnerID(), "stationary", records)
	require.NoError(t, err)

	req, err := env.svc.Submit(ctx, meta.ID, domain.NewResearcherID(), domain.AnalysisSummaryStats, analysis.Params{})
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, req.ID)
	require.NoError(t, err)

	result, err := env.svc.Execute(ctx, req.ID)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeReleaseBlocked))

	// The request stays approved so the owner can revoke it instead of the
	// blocked execution burning the one-shot.
	stored, err := env.svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, StateApproved, stored.State)
	assert.Nil(t, stored.ExecutedAt)
	assert.Nil(t, stored.Result)

	events, err := env.auditStore.ListByRequest(ctx, req.ID.String())
	require.NoError(t, err)
	var actions []audit.Action
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []audit.Action{
		audit.ActionRequestSubmitted,
		audit.ActionRequestApproved,
		audit.ActionReleaseBlocked,
	}, actions)
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	containerID := env.sealScenario(t, dataset.ScenarioJam)
	ctx := domainCtx()

	req, err := env.svc.Submit(ctx, containerID, domain.NewResearcherID(), domain.AnalysisSummaryStats, analysis.Params{})
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	_, err = env.svc.Execute(ctx, req.ID)
	require.NoError(t, err)

	events, err := env.auditStore.ListByRequest(ctx, req.ID.String())
	require.NoError(t, err)

	var actions []audit.Action
	for _, e := range events {
		actions = append(actions, e.Action)
		assert.Equal(t, "alice", e.Actor)
	}
	assert.Equal(t, []audit.Action{
		audit.ActionRequestSubmitted,
		audit.ActionRequestApproved,
		audit.ActionRequestExecuted,
		audit.ActionResultReleased,
	}, actions)
}

type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, audit.Event) error {
	return errors.New("trail is down")
}

func (failingAuditStore) ListByRequest(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func TestDecide_FailClosedOnAudit(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	goodPub := audit.NewPublisher(auditmem.New())
	vaultSvc := vault.NewService(vault.NewInMemoryStore(), goodPub, logger)
	catalog := analysis.NewCatalog(analysis.Config{MinAggregateCount: 3})
	store := NewInMemoryStore()
	svc := NewService(store, vaultSvc, catalog, Policy{MaxGridSize: 50, MinAggregateCount: 3}, audit.NewPublisher(failingAuditStore{}), logger)

	ctx := domainCtx()
	req := AnalysisRequest{
		ID:           domain.NewRequestID(),
		ContainerID:  domain.NewContainerID(),
		ResearcherID: domain.NewResearcherID(),
		Kind:         domain.AnalysisSummaryStats,
		State:        StateSubmitted,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, store.Save(ctx, req))

	_, err := svc.Approve(ctx, req.ID)
	require.Error(t, err)

	stored, err := store.Find(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, stored.State, "transition must not stand when the trail write fails")
}
