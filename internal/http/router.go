// Package httpapi assembles the public router. It is a thin layer: all
// business logic lives in the vault and governance services.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	governancehandler "geovault/internal/governance/handler"
	"geovault/internal/platform/metrics"
	"geovault/internal/platform/middleware"
	vaulthandler "geovault/internal/vault/handler"
	"geovault/pkg/platform/httputil"
)

const defaultRequestTimeout = 30 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Containers *vaulthandler.Handler
	Requests   *governancehandler.Handler
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// Checks are named readiness probes (database, cache) polled by /readyz.
	Checks map[string]func(ctx context.Context) error
	// RequestTimeout bounds handler execution; zero selects the default.
	RequestTimeout time.Duration
}

// NewRouter wires the middleware stack and all endpoints. Actor identity
// comes from the X-Actor and X-Actor-Role headers; there is no
// authentication in front of them, so the service must only be deployed on a
// trusted network.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	// ContentTypeJSON sits outside Timeout so the timeout body is served
	// with the JSON content type too.
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Timeout(timeout))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}
	r.Use(middleware.ActorContext)

	deps.Containers.Register(r)
	deps.Requests.Register(r)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady(deps.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := make(map[string]string, len(checks)+1)
		body["status"] = "ready"
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				body["status"] = "degraded"
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
