package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/httpx"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// GroupUseCases — все use cases, которые обслуживает HTTP слой group-service
type GroupUseCases interface {
	in.CreateRideUseCase
	in.ListCarsUseCase
	in.JoinGroupUseCase
	in.LeaveGroupUseCase
	in.CancelRequestUseCase
}

// HTTPHandler обрабатывает HTTP запросы group-service
type HTTPHandler struct {
	groups  GroupUseCases
	listing in.ListRequestsUseCase
	loc     *time.Location
	log     *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(groups GroupUseCases, listing in.ListRequestsUseCase, loc *time.Location, log *logger.Logger) *HTTPHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPHandler{groups: groups, listing: listing, loc: loc, log: log}
}

// RegisterRoutes регистрирует все HTTP маршруты
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware auth.Middleware) {
	mux.HandleFunc("GET /health", httpx.Health)

	mux.HandleFunc("GET /pricing/cars", authMiddleware(h.handleListCars))
	mux.HandleFunc("POST /rides", authMiddleware(h.handleCreateRide))
	mux.HandleFunc("GET /rides", authMiddleware(h.handleListRides))
	mux.HandleFunc("POST /rides/{request_id}/join", authMiddleware(h.handleJoin))
	mux.HandleFunc("POST /rides/{request_id}/leave", authMiddleware(h.handleLeave))
	mux.HandleFunc("POST /rides/{request_id}/cancel", authMiddleware(h.handleCancel))
}

// CreateRideHTTPRequest — HTTP DTO для создания запроса
type CreateRideHTTPRequest struct {
	Source           string    `json:"source"`
	Destination      string    `json:"destination"`
	TimeSlot         time.Time `json:"time_slot"`
	SeatsRequired    int       `json:"seats_required"`
	GenderPreference string    `json:"gender_preference,omitempty"`
	PricingID        string    `json:"pricing_id"`
}

// handleCreateRide обрабатывает POST /rides
func (h *HTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	var req CreateRideHTTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	output, err := h.groups.CreateRide(r.Context(), viewer, in.CreateRideInput{
		Source:           req.Source,
		Destination:      req.Destination,
		TimeSlot:         req.TimeSlot,
		SeatsRequired:    req.SeatsRequired,
		GenderPreference: req.GenderPreference,
		PricingID:        req.PricingID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusCreated, output)
}

// handleListCars обрабатывает GET /pricing/cars?source=&destination=&seats=
func (h *HTTPHandler) handleListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seats := 1
	if s := q.Get("seats"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", "seats must be a positive integer")
			return
		}
		seats = n
	}

	cars, err := h.groups.ListCars(r.Context(), q.Get("source"), q.Get("destination"), seats)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]any{"cars": cars})
}

// handleListRides обрабатывает GET /rides?date=YYYY-MM-DD&source=&destination=&female_only=true
func (h *HTTPHandler) handleListRides(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	filter, err := parseFilter(r, h.loc)
	if err != nil {
		httpx.RespondError(w, h.log, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	views, err := h.listing.ListRequests(r.Context(), viewer, filter)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]any{"rides": views})
}

func parseFilter(r *http.Request, loc *time.Location) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{
		Source:      strings.TrimSpace(q.Get("source")),
		Destination: strings.TrimSpace(q.Get("destination")),
	}
	if d := q.Get("date"); d != "" {
		day, err := time.ParseInLocation(time.DateOnly, d, loc)
		if err != nil {
			return f, errors.New("date must be YYYY-MM-DD")
		}
		f.Date = day
	}
	if v := q.Get("female_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("female_only must be a boolean")
		}
		f.FemaleOnly = b
	}
	return f, nil
}

func (h *HTTPHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	g, err := h.groups.Join(r.Context(), viewer, r.PathValue("request_id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, g)
}

func (h *HTTPHandler) handleLeave(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	g, err := h.groups.Leave(r.Context(), viewer, r.PathValue("request_id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, g)
}

func (h *HTTPHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.ViewerFrom(r.Context())
	if !ok {
		httpx.RespondError(w, h.log, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	req, err := h.groups.Cancel(r.Context(), viewer, r.PathValue("request_id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, req)
}

// handleUseCaseError обрабатывает ошибки use case
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	status, code := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(logger.Entry{
			Action:  "usecase_error",
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

// ErrorStatus сопоставляет доменную ошибку HTTP статусу и коду
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCapacity):
		return http.StatusBadRequest, "invalid_capacity"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrAlreadyMember):
		return http.StatusConflict, "already_member"
	case errors.Is(err, domain.ErrNotAMember):
		return http.StatusConflict, "not_a_member"
	case errors.Is(err, domain.ErrGroupFull):
		return http.StatusConflict, "group_full"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return http.StatusConflict, "already_cancelled"
	case errors.Is(err, domain.ErrRequestCancelled):
		return http.StatusConflict, "request_cancelled"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrGenderRestricted):
		return http.StatusForbidden, "gender_restricted"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
