package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 10})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newTestJWT()

	token, err := svc.GenerateToken("u-1", "a@b.c", model.RoleUser, model.GenderFemale)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, Viewer{UserID: "u-1", Role: model.RoleUser, Gender: model.GenderFemale}, claims.Viewer())
	assert.Equal(t, "taxi-share", claims.Issuer)
}

func TestJWT_RejectsUnknownRole(t *testing.T) {
	_, err := newTestJWT().GenerateToken("u-1", "", "PASSENGER", "")
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	svc := newTestJWT()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.GenerateToken("u-1", "", model.RoleUser, "")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := newTestJWT().GenerateToken("u-1", "", model.RoleAdmin, "")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "other", ExpiryMinutes: 10})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	svc := newTestJWT()
	userToken, _ := svc.GenerateToken("u-1", "", model.RoleUser, model.GenderMale)
	adminToken, _ := svc.GenerateToken("a-1", "", model.RoleAdmin, "")

	var seen Viewer
	next := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ViewerFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	tests := []struct {
		name         string
		header       string
		requireAdmin bool
		wantStatus   int
		wantUser     string
	}{
		{"missing header", "", false, http.StatusUnauthorized, ""},
		{"bad scheme", "Token " + userToken, false, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", false, http.StatusUnauthorized, ""},
		{"user ok", "Bearer " + userToken, false, http.StatusNoContent, "u-1"},
		{"user on admin route", "Bearer " + userToken, true, http.StatusForbidden, ""},
		{"admin ok", "Bearer " + adminToken, true, http.StatusNoContent, "a-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = Viewer{}
			h := JWTMiddleware(svc, logger.Nop(), tt.requireAdmin)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seen.UserID)
		})
	}
}

func TestViewerFrom_Empty(t *testing.T) {
	_, ok := ViewerFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
