package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.EqualError(t, DecodeJSON(httptest.NewRecorder(), r, &dst), "empty request body")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, logger.Nop(), http.StatusConflict, "group_full", "group is full")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"group is full","code":"group_full"}`, rec.Body.String())
}

func TestAccessLog(t *testing.T) {
	var out bytes.Buffer
	log := logger.New("test", logger.LevelDebug, &out, &out)

	h := AccessLog(log, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rides", nil)
	req.Header.Set(HeaderRequestID, "abc")
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
	assert.Contains(t, out.String(), `"status":418`)
	assert.Contains(t, out.String(), "GET /rides")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}
