package httpx

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack нужен для websocket upgrade на /ws
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// AccessLog пишет одну запись на запрос и проставляет X-Request-ID
func AccessLog(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		entry := logger.Entry{
			Action:  "http_request",
			Message: r.Method + " " + r.URL.Path,
			Additional: map[string]any{
				"http_request_id": id,
				"status":          rec.status,
				"duration_ms":     time.Since(start).Milliseconds(),
			},
		}
		if rec.status >= http.StatusInternalServerError {
			log.Warn(entry)
			return
		}
		log.Debug(entry)
	})
}
