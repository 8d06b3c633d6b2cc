package repo

import (
	"context"
	"errors"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PricingPgRepository — тарифы taxi_pricing
type PricingPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPricingPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PricingPgRepository {
	return &PricingPgRepository{pool: pool, log: log}
}

const pricingColumns = `
	id, route_name, car_name, car_type, base_price::float8, discount::float8, final_price::float8,
	max_passengers, distance_km::float8, toll_included, created_at, updated_at`

func scanPricing(row rowScanner) (*domain.Pricing, error) {
	p := &domain.Pricing{}
	err := row.Scan(
		&p.ID,
		&p.RouteName,
		&p.CarName,
		&p.CarType,
		&p.BasePrice,
		&p.Discount,
		&p.FinalPrice,
		&p.MaxPassengers,
		&p.DistanceKm,
		&p.TollIncluded,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PricingPgRepository) FindByID(ctx context.Context, pricingID string) (*domain.Pricing, error) {
	p, err := scanPricing(r.pool.QueryRow(ctx, `SELECT `+pricingColumns+` FROM taxi_pricing WHERE id = $1`, pricingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, r.fail("db_find_pricing_failed", "query pricing", err)
	}
	return p, nil
}

func (r *PricingPgRepository) ListByRoute(ctx context.Context, routeName string) ([]*domain.Pricing, error) {
	return r.list(ctx, `SELECT `+pricingColumns+` FROM taxi_pricing WHERE route_name = $1 ORDER BY final_price, id`, routeName)
}

func (r *PricingPgRepository) List(ctx context.Context) ([]*domain.Pricing, error) {
	return r.list(ctx, `SELECT `+pricingColumns+` FROM taxi_pricing ORDER BY route_name, car_type`)
}

func (r *PricingPgRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Pricing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.fail("db_list_pricing_failed", "list pricing", err)
	}
	defer rows.Close()

	var out []*domain.Pricing
	for rows.Next() {
		p, err := scanPricing(rows)
		if err != nil {
			return nil, r.fail("db_scan_pricing_failed", "scan pricing", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("db_list_pricing_failed", "iterate pricing", err)
	}
	return out, nil
}

// Update перезаписывает редактируемые админом поля тарифа
func (r *PricingPgRepository) Update(ctx context.Context, p *domain.Pricing) error {
	query := `
		UPDATE taxi_pricing
		SET car_name = $2, car_type = $3, base_price = $4, discount = $5, final_price = $6,
		    max_passengers = $7, distance_km = $8, toll_included = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.CarName,
		p.CarType,
		p.BasePrice,
		p.Discount,
		p.FinalPrice,
		p.MaxPassengers,
		p.DistanceKm,
		p.TollIncluded,
		p.UpdatedAt,
	)
	if err != nil {
		return r.fail("db_update_pricing_failed", "update pricing", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PricingPgRepository) fail(action, op string, err error) error {
	r.log.Error(logger.Entry{
		Action:  action,
		Message: err.Error(),
		Error:   &logger.ErrObj{Msg: err.Error()},
	})
	return domain.StoreError(op, err)
}
