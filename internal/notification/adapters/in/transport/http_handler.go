package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/spartan077/Taxi-Share/internal/notification/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/httpx"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// Service — use cases уведомлений, нужные HTTP слою
type Service interface {
	List(ctx context.Context, viewer auth.Viewer, limit int) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, viewer auth.Viewer) (int, error)
	MarkRead(ctx context.Context, viewer auth.Viewer, id string) error
}

type HTTPHandler struct {
	svc Service
	log *logger.Logger
}

func NewHTTPHandler(svc Service, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware auth.Middleware) {
	mux.HandleFunc("GET /notifications", authMiddleware(h.handleList))
	mux.HandleFunc("GET /notifications/unread_count", authMiddleware(h.handleUnreadCount))
	mux.HandleFunc("POST /notifications/{id}/read", authMiddleware(h.handleMarkRead))
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", "limit must be an integer")
			return
		}
		limit = n
	}

	items, err := h.svc.List(r.Context(), viewer, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]any{"notifications": items})
}

func (h *HTTPHandler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), viewer)
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]int{"unread": n})
}

func (h *HTTPHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	if err := h.svc.MarkRead(r.Context(), viewer, r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.RespondError(w, h.log, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.log.Error(logger.Entry{Action: "notification_store_error", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		httpx.RespondError(w, h.log, http.StatusServiceUnavailable, "store_unavailable", "store unavailable")
	default:
		h.log.Error(logger.Entry{Action: "usecase_error", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		httpx.RespondError(w, h.log, http.StatusInternalServerError, "internal", "internal server error")
	}
}
