// Package handler exposes the container endpoints for data owners.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"geovault/internal/dataset"
	"geovault/internal/platform/middleware"
	"geovault/internal/vault"
	"geovault/pkg/domain"
	"geovault/pkg/platform/httputil"
	"geovault/pkg/requestcontext"
)

// Service is the slice of the vault the HTTP layer needs.
type Service interface {
	Seal(ctx context.Context, owner domain.OwnerID, label string, records []dataset.RawRecord) (vault.Metadata, error)
	Describe(ctx context.Context, id domain.ContainerID) (vault.Metadata, error)
	List(ctx context.Context) ([]vault.Metadata, error)
}

// Handler wires container endpoints to the vault service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a container handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts container endpoints on the router. Sealing is restricted
// to the owner role; metadata reads are open to any actor.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireRole(requestcontext.RoleOwner)).
		Post("/containers", h.HandleSeal)
	r.Get("/containers", h.HandleList)
	r.Get("/containers/{containerID}", h.HandleDescribe)
}

// HandleSeal handles POST /containers requests.
func (h *Handler) HandleSeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SealRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	meta, err := h.service.Seal(ctx, req.ParsedOwner(), req.Label, req.Records)
	if err != nil {
		h.logger.ErrorContext(ctx, "container sealing failed",
			"request_id", requestID,
			"owner_id", req.OwnerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "container sealed",
		"request_id", requestID,
		"container_id", meta.ID,
		"record_count", meta.RecordCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromMetadata(meta))
}

// HandleList handles GET /containers requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	metas, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMetadataList(metas))
}

// HandleDescribe handles GET /containers/{containerID} requests.
func (h *Handler) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseContainerID(chi.URLParam(r, "containerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	meta, err := h.service.Describe(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMetadata(meta))
}
