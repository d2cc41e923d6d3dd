// The demo walks the full governed-analysis workflow in a single process:
// an owner seals GPS traces into the vault, a researcher submits analysis
// requests, and the domain operator approves and executes them. Only the
// released aggregates are printed; the raw coordinates never leave the
// vault.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"geovault/internal/analysis"
	"geovault/internal/dataset"
	"geovault/internal/governance"
	"geovault/internal/platform/logger"
	"geovault/internal/vault"
	"geovault/pkg/domain"
	audit "geovault/pkg/platform/audit"
	auditmem "geovault/pkg/platform/audit/store/memory"
	"geovault/pkg/requestcontext"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "demo failed:", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.New()
	auditStore := auditmem.New()
	pub := audit.NewPublisher(auditStore)
	vaultSvc := vault.NewService(vault.NewInMemoryStore(), pub, log)
	svc := governance.NewService(
		governance.NewInMemoryStore(),
		vaultSvc,
		analysis.NewCatalog(analysis.Config{MinAggregateCount: 3}),
		governance.Policy{MaxGridSize: 50, MinAggregateCount: 3},
		pub,
		log,
	)

	owner := domain.NewOwnerID()
	researcher := domain.NewResearcherID()
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	ownerCtx := requestcontext.WithActor(context.Background(), "owner-metro", requestcontext.RoleOwner)
	researcherCtx := requestcontext.WithActor(context.Background(), "dr-reyes", requestcontext.RoleResearcher)
	domainCtx := requestcontext.WithActor(context.Background(), "metro-traffic-domain", requestcontext.RoleDomain)

	fmt.Println("== scenario: congestion detection ==")
	for _, scenario := range []dataset.Scenario{dataset.ScenarioJam, dataset.ScenarioFreeFlow} {
		rng := rand.New(rand.NewPCG(1, uint64(len(scenario))))
		records := dataset.GenerateScenario(rng, scenario, 50, 20, start)
		meta, err := vaultSvc.Seal(ownerCtx, owner, string(scenario), records)
		if err != nil {
			return err
		}
		fmt.Printf("sealed container %s (%d records, %d drivers)\n",
			meta.ID, meta.RecordCount, meta.DriverCount)

		result, err := runRequest(researcherCtx, domainCtx, svc, meta.ID, researcher,
			domain.AnalysisCongestionLevel, analysis.Params{})
		if err != nil {
			return err
		}
		congestion := result.(analysis.CongestionResult)
		fmt.Printf("%-9s -> congestion %s (confidence %.0f%%)\n\n",
			scenario, congestion.Level, congestion.Confidence*100)
	}

	fmt.Println("== scenario: commute density ==")
	var commute []dataset.RawRecord
	rng := rand.New(rand.NewPCG(2, 2))
	for driver := 0; driver < 25; driver++ {
		commute = append(commute, dataset.SimulateDay(rng, driver, start)...)
	}
	meta, err := vaultSvc.Seal(ownerCtx, owner, "commute-day", commute)
	if err != nil {
		return err
	}
	fmt.Printf("sealed container %s (%d records, %d drivers)\n",
		meta.ID, meta.RecordCount, meta.DriverCount)

	result, err := runRequest(researcherCtx, domainCtx, svc, meta.ID, researcher,
		domain.AnalysisDensityGrid, analysis.Params{GridSize: 10})
	if err != nil {
		return err
	}
	density := result.(analysis.DensityResult)
	fmt.Printf("density grid %dx%d, %d points, %d hotspots, %d sparse cells suppressed\n",
		density.GridSize, density.GridSize, density.TotalPoints, len(density.Hotspots), density.Suppressed)
	for _, h := range density.Hotspots {
		fmt.Printf("  hotspot near (%.4f, %.4f): %d points\n", h.Latitude, h.Longitude, h.Count)
	}

	fmt.Printf("\naudit trail: %d events recorded\n", len(auditStore.All()))
	return nil
}

// runRequest drives one request through submit, approve, and execute.
func runRequest(researcherCtx, domainCtx context.Context, svc *governance.Service,
	containerID domain.ContainerID, researcher domain.ResearcherID,
	kind domain.AnalysisKind, params analysis.Params) (analysis.Result, error) {

	req, err := svc.Submit(researcherCtx, containerID, researcher, kind, params)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Approve(domainCtx, req.ID); err != nil {
		return nil, err
	}
	return svc.Execute(domainCtx, req.ID)
}
