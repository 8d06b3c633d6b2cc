package repo

import (
	"context"
	"errors"

	"github.com/spartan077/Taxi-Share/internal/admin/domain"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusPgRepository — таблица ride_status
type StatusPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewStatusPgRepository(pool *pgxpool.Pool, log *logger.Logger) *StatusPgRepository {
	return &StatusPgRepository{pool: pool, log: log}
}

const statusColumns = `ride_group_id, first_call, follow_up, payment, advance_payment, COALESCE(updated_by, '') AS updated_by, updated_at`

func (r *StatusPgRepository) Get(ctx context.Context, groupID string) (*domain.RideStatus, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+statusColumns+` FROM ride_status WHERE ride_group_id = $1`, groupID)
	if err != nil {
		return nil, r.fail("db_get_ride_status_failed", groupID, "query ride status", err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[domain.RideStatus])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, r.fail("db_get_ride_status_failed", groupID, "scan ride status", err)
	}
	return s, nil
}

func (r *StatusPgRepository) Upsert(ctx context.Context, s *domain.RideStatus) error {
	query := `
		INSERT INTO ride_status (ride_group_id, first_call, follow_up, payment, advance_payment, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ride_group_id) DO UPDATE SET
			first_call = EXCLUDED.first_call,
			follow_up = EXCLUDED.follow_up,
			payment = EXCLUDED.payment,
			advance_payment = EXCLUDED.advance_payment,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		s.GroupID, s.FirstCall, s.FollowUp, s.Payment, s.AdvancePayment, s.UpdatedBy, s.UpdatedAt)
	if err != nil {
		return r.fail("db_upsert_ride_status_failed", s.GroupID, "upsert ride status", err)
	}
	return nil
}

func (r *StatusPgRepository) ListAll(ctx context.Context) (map[string]*domain.RideStatus, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+statusColumns+` FROM ride_status`)
	if err != nil {
		return nil, r.fail("db_list_ride_status_failed", "", "list ride status", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.RideStatus])
	if err != nil {
		return nil, r.fail("db_list_ride_status_failed", "", "scan ride status", err)
	}
	out := make(map[string]*domain.RideStatus, len(items))
	for _, s := range items {
		out[s.GroupID] = s
	}
	return out, nil
}

func (r *StatusPgRepository) fail(action, groupID, op string, err error) error {
	r.log.Error(logger.Entry{
		Action:  action,
		Message: err.Error(),
		GroupID: groupID,
		Error:   &logger.ErrObj{Msg: err.Error()},
	})
	return ridedomain.StoreError(op, err)
}
