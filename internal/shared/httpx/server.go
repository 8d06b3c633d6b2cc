package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// Server — http.Server с логированием старта и остановки
type Server struct {
	addr   string
	log    *logger.Logger
	server *http.Server
}

func NewServer(port int, handler http.Handler, log *logger.Logger) *Server {
	addr := ":" + strconv.Itoa(port)
	return &Server{
		addr: addr,
		log:  log,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Serve блокируется до Shutdown; http.ErrServerClosed не считается ошибкой
func (s *Server) Serve() error {
	s.log.Info(logger.Entry{
		Action:  "http_server_starting",
		Message: s.addr,
	})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error(logger.Entry{
			Action:  "http_server_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return err
	}
	s.log.Info(logger.Entry{Action: "http_server_stopped", Message: s.addr})
	return nil
}
