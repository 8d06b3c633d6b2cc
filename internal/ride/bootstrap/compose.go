// ============================================================================
// BOOTSTRAP (Compose Root) - Group Service
// ============================================================================
//
// Собирает group service поверх уже открытой платформы:
//
//   platform (repos, publisher, JWT)
//        ↓
//   NotificationService ← ws.Hub (live push)
//        ↓
//   CapacityManager, ListRequestsService
//        ↓
//   HTTP: /rides, /pricing/cars, /notifications, /ws, /metrics, /health
//
// При остановке ждем фоновые уведомления и события CapacityManager.
// ============================================================================

package bootstrap

import (
	"context"
	"net/http"
	"time"

	notiftransport "github.com/spartan077/Taxi-Share/internal/notification/adapters/in/transport"
	notifusecase "github.com/spartan077/Taxi-Share/internal/notification/application/usecase"
	"github.com/spartan077/Taxi-Share/internal/platform"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/in/transport"
	"github.com/spartan077/Taxi-Share/internal/ride/application/usecase"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/httpx"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
	"github.com/spartan077/Taxi-Share/internal/shared/ws"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 15 * time.Second

// Run запускает Group Service и блокируется до отмены ctx
func Run(ctx context.Context, cfg config.Config, p *platform.Platform, log *logger.Logger) {
	log.Info(logger.Entry{Action: "group_service_starting", Message: "initializing group service"})

	// ========================================================================
	// WEBSOCKET HUB + УВЕДОМЛЕНИЯ
	// ========================================================================
	hub := ws.NewHub(p.JWT.ExtractUserID, log)
	go hub.Run(ctx)

	notifications := notifusecase.NewNotificationService(p.Notifications, hub, log)

	// ========================================================================
	// USE CASES
	// ========================================================================
	loc := cfg.Capacity.Location()
	manager := usecase.NewCapacityManager(
		p.Requests,
		p.Groups,
		p.Pricing,
		notifications, // NotificationSink
		p.Publisher,   // nil при store=memory
		cfg.Capacity,
		log,
	)
	listing := usecase.NewListRequestsService(p.Requests, p.Groups, loc, log)

	// ========================================================================
	// HTTP
	// ========================================================================
	mux := http.NewServeMux()
	authMiddleware := auth.JWTMiddleware(p.JWT, log, false)

	transport.NewHTTPHandler(manager, listing, loc, log).RegisterRoutes(mux, authMiddleware)
	notiftransport.NewHTTPHandler(notifications, log).RegisterRoutes(mux, authMiddleware)
	mux.HandleFunc("GET /ws", hub.ServeWS)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httpx.NewServer(cfg.Services.GroupServicePort, httpx.AccessLog(log, mux), log)
	go func() {
		if err := server.Serve(); err != nil {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	// Ожидаем завершения контекста
	<-ctx.Done()
	log.Info(logger.Entry{Action: "group_service_stopping", Message: "shutting down group service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx) // ошибку логирует httpx.Server

	// уведомления и события, запущенные последними запросами
	manager.Wait()

	log.Info(logger.Entry{Action: "group_service_stopped", Message: "group service stopped"})
}
