// Package handler exposes the analysis request lifecycle over HTTP:
// researchers submit, the domain operator decides and executes.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"geovault/internal/analysis"
	"geovault/internal/governance"
	"geovault/internal/platform/middleware"
	"geovault/pkg/domain"
	"geovault/pkg/platform/httputil"
	"geovault/pkg/requestcontext"
)

// Service defines the governance operations the HTTP layer needs.
type Service interface {
	Submit(ctx context.Context, containerID domain.ContainerID, researcher domain.ResearcherID, kind domain.AnalysisKind, params analysis.Params) (governance.AnalysisRequest, error)
	Approve(ctx context.Context, id domain.RequestID) (governance.AnalysisRequest, error)
	Deny(ctx context.Context, id domain.RequestID, reason string) (governance.AnalysisRequest, error)
	Execute(ctx context.Context, id domain.RequestID) (analysis.Result, error)
	Get(ctx context.Context, id domain.RequestID) (governance.AnalysisRequest, error)
	List(ctx context.Context) ([]governance.AnalysisRequest, error)
	ListByContainer(ctx context.Context, id domain.ContainerID) ([]governance.AnalysisRequest, error)
	Result(ctx context.Context, id domain.RequestID) (analysis.Result, error)
}

// Handler wires request lifecycle endpoints to the governance service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	submitPerMin int
}

// New constructs a governance handler. submitPerMin bounds POST /requests
// per actor.
func New(service Service, logger *slog.Logger, submitPerMin int) *Handler {
	return &Handler{service: service, logger: logger, submitPerMin: submitPerMin}
}

// Register mounts the request endpoints. Decisions and execution require the
// domain role; submission requires the researcher role.
func (h *Handler) Register(r chi.Router) {
	r.With(
		middleware.RequireRole(requestcontext.RoleResearcher),
		middleware.SubmitRateLimit(h.submitPerMin),
	).Post("/requests", h.HandleSubmit)

	r.Get("/requests", h.HandleList)
	r.Get("/requests/{requestID}", h.HandleGet)
	r.Get("/requests/{requestID}/result", h.HandleResult)
	r.Get("/containers/{containerID}/requests", h.HandleListByContainer)

	r.With(middleware.RequireRole(requestcontext.RoleDomain)).Group(func(r chi.Router) {
		r.Post("/requests/{requestID}/approve", h.HandleApprove)
		r.Post("/requests/{requestID}/deny", h.HandleDeny)
		r.Post("/requests/{requestID}/execute", h.HandleExecute)
	})
}

// HandleSubmit handles POST /requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Submit(ctx, req.ParsedContainer(), req.ParsedResearcher(), req.ParsedKind(), req.Params)
	if err != nil {
		h.logger.ErrorContext(ctx, "request submission failed",
			"request_id", requestID,
			"container_id", req.ContainerID,
			"kind", req.Kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRequest(created))
}

// HandleApprove handles POST /requests/{requestID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(req))
}

// HandleDeny handles POST /requests/{requestID}/deny.
func (h *Handler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DenyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	denied, err := h.service.Deny(ctx, id, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(denied))
}

// HandleExecute handles POST /requests/{requestID}/execute.
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Execute(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "request execution failed",
			"request_id", requestID,
			"analysis_request_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "request executed",
		"request_id", requestID,
		"analysis_request_id", id,
		"kind", result.Kind(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		RequestID: id.String(),
		Kind:      result.Kind().String(),
		Result:    result,
	})
}

// HandleGet handles GET /requests/{requestID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(req))
}

// HandleList handles GET /requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequestList(reqs))
}

// HandleListByContainer handles GET /containers/{containerID}/requests.
func (h *Handler) HandleListByContainer(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseContainerID(chi.URLParam(r, "containerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reqs, err := h.service.ListByContainer(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequestList(reqs))
}

// HandleResult handles GET /requests/{requestID}/result.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Result(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		RequestID: req.ID.String(),
		Kind:      req.Kind.String(),
		Result:    result,
	})
}
