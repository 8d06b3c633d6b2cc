package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/out/memory"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/ride/application/usecase"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	srv *httptest.Server
	jwt *auth.JWTService
	mgr *usecase.CapacityManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	store.SeedPricing(&domain.Pricing{
		ID: "sedan", RouteName: "pune_to_mumbai", CarName: "Dzire", CarType: "sedan",
		BasePrice: 3000, Discount: 500, FinalPrice: 2500, MaxPassengers: 4,
	})

	mgr := usecase.NewCapacityManager(store.Requests(), store.Groups(), store.Pricing(), nil, nil,
		config.CapacityConfig{MaxAttempts: 3, RetryBackoffMs: 1, NotifyTimeoutMs: 1000}, log)
	listing := usecase.NewListRequestsService(store.Requests(), store.Groups(), time.UTC, log)
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 60})

	mux := http.NewServeMux()
	NewHTTPHandler(mgr, listing, time.UTC, log).RegisterRoutes(mux, auth.JWTMiddleware(jwtService, log, false))

	ts := &testServer{srv: httptest.NewServer(mux), jwt: jwtService, mgr: mgr}
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, userID, gender string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		token, err := ts.jwt.GenerateToken(userID, userID+"@example.com", model.RoleUser, gender)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ts *testServer) createRide(t *testing.T, userID string, seats int) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/rides", userID, model.GenderFemale, CreateRideHTTPRequest{
		Source: "Pune", Destination: "Mumbai", SeatsRequired: seats, PricingID: "sedan",
		TimeSlot: time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[in.CreateRideOutput](t, resp)
	return out.Request.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRides_RequireAuth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/rides", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJoinFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createRide(t, "creator", 2)

	resp := ts.do(t, http.MethodPost, "/rides/"+id+"/join", "creator", model.GenderFemale, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_member", decode[map[string]string](t, resp)["code"])

	for _, u := range []string{"u1", "u2"} {
		resp = ts.do(t, http.MethodPost, "/rides/"+id+"/join", u, model.GenderMale, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp = ts.do(t, http.MethodPost, "/rides/"+id+"/join", "u3", model.GenderMale, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "group_full", decode[map[string]string](t, resp)["code"])

	// заполненная группа скрыта от посторонних, но видна участникам
	resp = ts.do(t, http.MethodGet, "/rides", "u3", model.GenderMale, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[map[string][]in.RequestView](t, resp)["rides"])

	resp = ts.do(t, http.MethodGet, "/rides?date=2025-03-14&source=Pune", "u1", model.GenderMale, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	views := decode[map[string][]in.RequestView](t, resp)["rides"]
	require.Len(t, views, 1)
	assert.True(t, views[0].IsMember)
	assert.True(t, views[0].IsFull)

	resp = ts.do(t, http.MethodPost, "/rides/"+id+"/leave", "u1", model.GenderMale, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g := decode[domain.RideGroup](t, resp)
	assert.Equal(t, []string{"u2"}, g.Members)
	assert.Equal(t, 1, g.RemainingCapacity)

	resp = ts.do(t, http.MethodPost, "/rides/"+id+"/leave", "u1", model.GenderMale, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/rides/missing/join", "u1", model.GenderMale, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRide_Validation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/rides", "creator", model.GenderFemale, CreateRideHTTPRequest{
		Source: "Pune", Destination: "Mumbai", SeatsRequired: 9, PricingID: "sedan", TimeSlot: time.Now(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_capacity", decode[map[string]string](t, resp)["code"])

	resp = ts.do(t, http.MethodPost, "/rides", "creator", model.GenderFemale, map[string]any{"bogus": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCancel_OnlyCreator(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createRide(t, "creator", 1)

	resp := ts.do(t, http.MethodPost, "/rides/"+id+"/cancel", "u1", model.GenderMale, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/rides/"+id+"/cancel", "creator", model.GenderFemale, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RequestStatusCancelled, decode[domain.RideRequest](t, resp).Status)

	resp = ts.do(t, http.MethodPost, "/rides/"+id+"/cancel", "creator", model.GenderFemale, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListCars(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/pricing/cars?source=Pune&destination=Mumbai&seats=2", "u1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cars := decode[map[string][]in.CarOption](t, resp)["cars"]
	require.Len(t, cars, 1)
	assert.Equal(t, 625, cars[0].PricePerPerson)
	assert.Equal(t, 2, cars[0].RemainingForOther)

	resp = ts.do(t, http.MethodGet, "/pricing/cars?source=Pune&destination=Mumbai&seats=x", "u1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/rides?date=2025-03-14&female_only=true&destination=+Goa+", nil)
	f, err := parseFilter(r, time.UTC)
	require.NoError(t, err)
	assert.True(t, f.FemaleOnly)
	assert.Equal(t, "Goa", f.Destination)
	assert.Equal(t, 14, f.Date.Day())

	_, err = parseFilter(httptest.NewRequest(http.MethodGet, "/rides?date=14-03-2025", nil), time.UTC)
	assert.Error(t, err)
	_, err = parseFilter(httptest.NewRequest(http.MethodGet, "/rides?female_only=maybe", nil), time.UTC)
	assert.Error(t, err)
}

func TestErrorStatus(t *testing.T) {
	status, code := ErrorStatus(domain.StoreError("x", assert.AnError))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "store_unavailable", code)

	status, _ = ErrorStatus(domain.ErrGenderRestricted)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ErrorStatus(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
}
