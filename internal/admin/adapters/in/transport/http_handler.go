package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/spartan077/Taxi-Share/internal/admin/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/admin/domain"
	ridetransport "github.com/spartan077/Taxi-Share/internal/ride/adapter/in/transport"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/httpx"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// CapacityAdmin — админские операции CapacityManager
type CapacityAdmin interface {
	RemoveMember(ctx context.Context, admin auth.Viewer, requestID, userID string) (*ridedomain.RideGroup, error)
	Resize(ctx context.Context, admin auth.Viewer, requestID string, newTotal, newRemaining int) (*ridedomain.RideGroup, error)
	Cancel(ctx context.Context, viewer auth.Viewer, requestID string) (*ridedomain.RideRequest, error)
	DeleteGroup(ctx context.Context, admin auth.Viewer, requestID string) error
}

// HTTPHandler обрабатывает HTTP запросы для Admin Service
type HTTPHandler struct {
	capacity CapacityAdmin
	pricing  in.PricingManagerUseCase
	statuses in.RideStatusUseCase
	overview in.OverviewUseCase
	log      *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	capacity CapacityAdmin,
	pricing in.PricingManagerUseCase,
	statuses in.RideStatusUseCase,
	overview in.OverviewUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		capacity: capacity,
		pricing:  pricing,
		statuses: statuses,
		overview: overview,
		log:      log,
	}
}

// RegisterRoutes регистрирует маршруты; adminAuth должен требовать роль ADMIN
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, adminAuth auth.Middleware) {
	// liveness probe (без аутентификации)
	mux.HandleFunc("GET /health", httpx.Health)

	mux.HandleFunc("GET /admin/groups", adminAuth(h.handleOverview))
	mux.HandleFunc("PUT /admin/groups/{group_id}/status", adminAuth(h.handleUpdateStatus))

	mux.HandleFunc("DELETE /admin/rides/{request_id}", adminAuth(h.handleDeleteGroup))
	mux.HandleFunc("DELETE /admin/rides/{request_id}/members/{user_id}", adminAuth(h.handleRemoveMember))
	mux.HandleFunc("PUT /admin/rides/{request_id}/capacity", adminAuth(h.handleResize))
	mux.HandleFunc("POST /admin/rides/{request_id}/cancel", adminAuth(h.handleCancel))

	mux.HandleFunc("GET /admin/pricing", adminAuth(h.handleListPricing))
	mux.HandleFunc("PUT /admin/pricing/{id}", adminAuth(h.handleUpdatePricing))
}

func (h *HTTPHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	items, err := h.overview.Overview(r.Context())
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]any{"groups": items})
}

// handleUpdateStatus: тело {"first_call": true, "payment": false, ...}
func (h *HTTPHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var flags map[string]bool
	if err := httpx.DecodeJSON(w, r, &flags); err != nil {
		httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	update, err := domain.StatusUpdateFromFlags(flags)
	if err != nil {
		httpx.RespondError(w, h.log, http.StatusBadRequest, "unknown_flag", err.Error())
		return
	}

	status, err := h.statuses.UpdateStatus(r.Context(), admin, r.PathValue("group_id"), update)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, status)
}

func (h *HTTPHandler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	if err := h.capacity.DeleteGroup(r.Context(), admin, r.PathValue("request_id")); err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	g, err := h.capacity.RemoveMember(r.Context(), admin, r.PathValue("request_id"), r.PathValue("user_id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, g)
}

// ResizeHTTPRequest — HTTP DTO для override вместимости
type ResizeHTTPRequest struct {
	TotalCapacity     int `json:"total_capacity"`
	RemainingCapacity int `json:"remaining_capacity"`
}

func (h *HTTPHandler) handleResize(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	var req ResizeHTTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	g, err := h.capacity.Resize(r.Context(), admin, r.PathValue("request_id"), req.TotalCapacity, req.RemainingCapacity)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, g)
}

func (h *HTTPHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	req, err := h.capacity.Cancel(r.Context(), admin, r.PathValue("request_id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, req)
}

func (h *HTTPHandler) handleListPricing(w http.ResponseWriter, r *http.Request) {
	rows, err := h.pricing.ListPricing(r.Context())
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]any{"pricing": rows})
}

func (h *HTTPHandler) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	var update in.PricingUpdate
	if err := httpx.DecodeJSON(w, r, &update); err != nil {
		httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	p, err := h.pricing.UpdatePricing(r.Context(), admin, r.PathValue("id"), update)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, p)
}

// handleUseCaseError: доменные ошибки ride маппятся так же, как в group service
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	status, code := ridetransport.ErrorStatus(err)
	if errors.Is(err, domain.ErrEmptyUpdate) {
		code = "empty_update"
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(logger.Entry{
			Action:  "admin_usecase_error",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "internal server error"
	case http.StatusServiceUnavailable:
		message = "store unavailable"
	}
	httpx.RespondError(w, h.log, status, code, message)
}
