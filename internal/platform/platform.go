// Package platform открывает общую инфраструктуру group и admin сервисов:
// хранилище (postgres или memory), RabbitMQ и JWT.
package platform

import (
	"context"
	"fmt"

	adminmemory "github.com/spartan077/Taxi-Share/internal/admin/adapters/out/memory"
	adminrepo "github.com/spartan077/Taxi-Share/internal/admin/adapters/out/repo"
	adminout "github.com/spartan077/Taxi-Share/internal/admin/application/ports/out"
	notifmemory "github.com/spartan077/Taxi-Share/internal/notification/adapters/out/memory"
	notifrepo "github.com/spartan077/Taxi-Share/internal/notification/adapters/out/repo"
	notifout "github.com/spartan077/Taxi-Share/internal/notification/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/out/memory"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/out/out_amqp"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/out/repo"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	db_conn "github.com/spartan077/Taxi-Share/internal/shared/db"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
	"github.com/spartan077/Taxi-Share/internal/shared/mq"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Platform — все, что сервисы берут из инфраструктуры
type Platform struct {
	Requests      out.RequestRepository
	Groups        out.GroupRepository
	Pricing       out.PricingRepository
	Notifications notifout.NotificationRepository
	Statuses      adminout.StatusRepository

	// Publisher — nil, если RabbitMQ не используется (store=memory)
	Publisher out.EventPublisher
	MQ        *mq.RabbitMQ
	JWT       *auth.JWTService

	pool *pgxpool.Pool
	log  *logger.Logger
}

// Open подключается к БД и RabbitMQ (store=postgres) или собирает
// in-memory хранилище с dev тарифами (store=memory, без брокера).
func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (*Platform, error) {
	p := &Platform{
		JWT: auth.NewJWTService(cfg.JWT),
		log: log,
	}

	switch cfg.Capacity.Store {
	case StoreMemory:
		p.openMemory()
		log.Warn(logger.Entry{
			Action:  "memory_store_enabled",
			Message: "state is not persisted, group events are not published",
		})
		return p, nil

	case StorePostgres:
		if err := p.openPostgres(ctx, cfg, log); err != nil {
			p.Close()
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown capacity.store %q", cfg.Capacity.Store)
	}
}

func (p *Platform) openMemory() {
	store := memory.NewStore()
	store.SeedPricing(DevPricing()...)
	p.Requests = store.Requests()
	p.Groups = store.Groups()
	p.Pricing = store.Pricing()
	p.Notifications = notifmemory.NewRepo()
	p.Statuses = adminmemory.NewStatusRepo()
}

func (p *Platform) openPostgres(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	pool, err := db_conn.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	p.pool = pool

	// Применяем миграции (таблицы, индексы, dev тарифы)
	if err := db_conn.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	p.Requests = repo.NewRequestPgRepository(pool, log)
	p.Groups = repo.NewGroupPgRepository(pool, log)
	p.Pricing = repo.NewPricingPgRepository(pool, log)
	p.Notifications = notifrepo.NewNotificationPgRepository(pool, log)
	p.Statuses = adminrepo.NewStatusPgRepository(pool, log)

	mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	p.MQ = mqConn

	// exchange group_topic, очереди и bindings
	if err := mq.SetupTopology(ctx, mqConn, log); err != nil {
		return fmt.Errorf("rabbitmq topology: %w", err)
	}
	p.Publisher = out_amqp.NewGroupEventPublisher(mqConn, log)
	return nil
}

// Close закрывает брокер и пул; безопасен для частично открытой платформы
func (p *Platform) Close() {
	if p.MQ != nil {
		p.MQ.Close()
	}
	db_conn.Close(p.pool, p.log)
}

// DevPricing — тарифы для store=memory, совпадают с 004_seed_pricing.sql
func DevPricing() []*domain.Pricing {
	return []*domain.Pricing{
		{ID: "pune-mumbai-sedan", RouteName: "pune_to_mumbai", CarName: "Swift Dzire", CarType: "sedan", BasePrice: 3000, Discount: 500, FinalPrice: 2500, MaxPassengers: 4, DistanceKm: 150, TollIncluded: true},
		{ID: "pune-mumbai-suv", RouteName: "pune_to_mumbai", CarName: "Toyota Innova", CarType: "suv", BasePrice: 4200, Discount: 600, FinalPrice: 3600, MaxPassengers: 6, DistanceKm: 150, TollIncluded: true},
		{ID: "mumbai-pune-sedan", RouteName: "mumbai_to_pune", CarName: "Swift Dzire", CarType: "sedan", BasePrice: 3000, Discount: 500, FinalPrice: 2500, MaxPassengers: 4, DistanceKm: 150, TollIncluded: true},
		{ID: "mumbai-pune-suv", RouteName: "mumbai_to_pune", CarName: "Toyota Innova", CarType: "suv", BasePrice: 4200, Discount: 600, FinalPrice: 3600, MaxPassengers: 6, DistanceKm: 150, TollIncluded: true},
	}
}
