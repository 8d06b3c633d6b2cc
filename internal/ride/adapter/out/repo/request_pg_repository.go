package repo

import (
	"context"
	"errors"
	"time"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestPgRepository — PostgreSQL репозиторий ride_requests
type RequestPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewRequestPgRepository создает новый экземпляр репозитория
func NewRequestPgRepository(pool *pgxpool.Pool, log *logger.Logger) *RequestPgRepository {
	return &RequestPgRepository{pool: pool, log: log}
}

const requestColumns = `
	id, user_id, source, destination, time_slot, seats_required,
	gender_preference, status, selected_car, car_details, created_at, updated_at`

// rowScanner — общий интерфейс pgx.Row и pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.RideRequest, error) {
	req := &domain.RideRequest{}
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Source,
		&req.Destination,
		&req.TimeSlot,
		&req.SeatsRequired,
		&req.GenderPreference,
		&req.Status,
		&req.SelectedCar,
		&req.CarDetails,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	return req, err
}

// Create создает новый запрос
func (r *RequestPgRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	query := `INSERT INTO ride_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.UserID,
		req.Source,
		req.Destination,
		req.TimeSlot,
		req.SeatsRequired,
		req.GenderPreference,
		req.Status,
		req.SelectedCar,
		req.CarDetails,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return r.fail("db_create_ride_request_failed", req.ID, "insert ride request", err)
	}
	return nil
}

// FindByID возвращает запрос по ID
func (r *RequestPgRepository) FindByID(ctx context.Context, requestID string) (*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, r.fail("db_find_ride_request_failed", requestID, "query ride request", err)
	}
	return req, nil
}

// CancelPending: обе строки меняются одним statement, version группы растет
// вместе со статусом. Группы может не быть, тогда меняется только запрос.
func (r *RequestPgRepository) CancelPending(ctx context.Context, requestID string, updatedAt time.Time) (bool, error) {
	query := `
		WITH cancelled AS (
			UPDATE ride_requests
			SET status = 'cancelled', updated_at = $2
			WHERE id = $1 AND status = 'pending'
			RETURNING id
		), bumped AS (
			UPDATE ride_groups
			SET version = version + 1, updated_at = $2
			WHERE ride_request_id IN (SELECT id FROM cancelled)
			RETURNING id
		)
		SELECT count(*) FROM cancelled
	`

	var n int
	if err := r.pool.QueryRow(ctx, query, requestID, updatedAt).Scan(&n); err != nil {
		return false, r.fail("db_cancel_ride_request_failed", requestID, "cancel ride request", err)
	}
	if n == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ride_requests WHERE id = $1)`, requestID).Scan(&exists)
		if err != nil {
			return false, r.fail("db_find_ride_request_failed", requestID, "query ride request", err)
		}
		if !exists {
			return false, domain.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

// Delete удаляет запрос; ride_groups ссылается на него, поэтому группа удаляется раньше
func (r *RequestPgRepository) Delete(ctx context.Context, requestID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ride_requests WHERE id = $1`, requestID)
	if err != nil {
		return r.fail("db_delete_ride_request_failed", requestID, "delete ride request", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List возвращает все запросы, новые первыми
func (r *RequestPgRepository) List(ctx context.Context) ([]*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, r.fail("db_list_ride_requests_failed", "", "list ride requests", err)
	}
	defer rows.Close()

	var out []*domain.RideRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, r.fail("db_scan_ride_request_failed", "", "scan ride request", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("db_list_ride_requests_failed", "", "iterate ride requests", err)
	}
	return out, nil
}

func (r *RequestPgRepository) fail(action, requestID, op string, err error) error {
	r.log.Error(logger.Entry{
		Action:    action,
		Message:   err.Error(),
		RequestID: requestID,
		Error:     &logger.ErrObj{Msg: err.Error()},
	})
	return domain.StoreError(op, err)
}
