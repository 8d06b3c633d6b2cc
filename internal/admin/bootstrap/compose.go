// ============================================================================
// BOOTSTRAP (Compose Root) - Admin Service
// ============================================================================
//
//   platform (repos, publisher, MQ, JWT)
//        ↓
//   CapacityManager (remove / resize / cancel / delete)
//   PricingManager, RideStatus, Overview
//        ↓
//   HTTP /admin/* (роль ADMIN), /ws для админов, /metrics, /health
//        ↑
//   GroupEventConsumer: group_topic group.* → ws админам (только store=postgres)
// ============================================================================

package bootstrap

import (
	"context"
	"net/http"
	"time"

	inamqp "github.com/spartan077/Taxi-Share/internal/admin/adapters/in/in_amqp"
	"github.com/spartan077/Taxi-Share/internal/admin/adapters/in/transport"
	"github.com/spartan077/Taxi-Share/internal/admin/application/usecase"
	notifusecase "github.com/spartan077/Taxi-Share/internal/notification/application/usecase"
	"github.com/spartan077/Taxi-Share/internal/platform"
	rideusecase "github.com/spartan077/Taxi-Share/internal/ride/application/usecase"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/httpx"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
	"github.com/spartan077/Taxi-Share/internal/shared/ws"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 15 * time.Second

// Run запускает Admin Service и блокируется до отмены ctx
func Run(ctx context.Context, cfg config.Config, p *platform.Platform, log *logger.Logger) {
	log.Info(logger.Entry{Action: "admin_service_starting", Message: "initializing admin service"})

	// Hub админки: сюда подключаются админы за live-лентой событий групп.
	// Уведомления пользователям из админских операций сохраняются в таблицу;
	// live push идет только клиентам этого hub.
	hub := ws.NewHub(p.JWT.ExtractUserID, log)
	go hub.Run(ctx)

	notifications := notifusecase.NewNotificationService(p.Notifications, hub, log)
	manager := rideusecase.NewCapacityManager(
		p.Requests,
		p.Groups,
		p.Pricing,
		notifications,
		p.Publisher,
		cfg.Capacity,
		log,
	)

	pricingUC := usecase.NewPricingManagerService(p.Pricing, log)
	statusUC := usecase.NewRideStatusService(p.Statuses, p.Groups, log)
	overviewUC := usecase.NewOverviewService(p.Requests, p.Groups, p.Statuses, log)

	if p.MQ != nil {
		consumer := inamqp.NewGroupEventConsumer(p.MQ, hub, log)
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error(logger.Entry{
					Action:  "group_event_consumer_failed",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
			}
		}()
	}

	mux := http.NewServeMux()
	adminAuth := auth.JWTMiddleware(p.JWT, log, true)
	transport.NewHTTPHandler(manager, pricingUC, statusUC, overviewUC, log).RegisterRoutes(mux, adminAuth)
	mux.HandleFunc("GET /ws", hub.ServeWS)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httpx.NewServer(cfg.Services.AdminServicePort, httpx.AccessLog(log, mux), log)
	go func() {
		if err := server.Serve(); err != nil {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	<-ctx.Done()
	log.Info(logger.Entry{Action: "admin_service_stopping", Message: "shutting down admin service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx) // ошибку логирует httpx.Server

	manager.Wait()

	log.Info(logger.Entry{Action: "admin_service_stopped", Message: "admin service stopped"})
}
