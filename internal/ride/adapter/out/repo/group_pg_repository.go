package repo

import (
	"context"
	"errors"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupPgRepository — PostgreSQL репозиторий ride_groups.
// Конкурентные мутации защищены условным UPDATE по колонке version.
type GroupPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewGroupPgRepository(pool *pgxpool.Pool, log *logger.Logger) *GroupPgRepository {
	return &GroupPgRepository{pool: pool, log: log}
}

const groupColumns = `
	id, ride_request_id, total_capacity, remaining_capacity, members, version, created_at, updated_at`

func scanGroup(row rowScanner) (*domain.RideGroup, error) {
	g := &domain.RideGroup{}
	err := row.Scan(
		&g.ID,
		&g.RideRequestID,
		&g.TotalCapacity,
		&g.RemainingCapacity,
		&g.Members,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if g.Members == nil {
		g.Members = []string{}
	}
	return g, err
}

func (r *GroupPgRepository) Create(ctx context.Context, g *domain.RideGroup) error {
	query := `INSERT INTO ride_groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		g.ID,
		g.RideRequestID,
		g.TotalCapacity,
		g.RemainingCapacity,
		g.Members,
		g.Version,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		return r.fail("db_create_ride_group_failed", g.ID, "insert ride group", err)
	}
	return nil
}

func (r *GroupPgRepository) FindByID(ctx context.Context, groupID string) (*domain.RideGroup, error) {
	return r.findOne(ctx, `SELECT `+groupColumns+` FROM ride_groups WHERE id = $1`, groupID)
}

func (r *GroupPgRepository) FindByRequestID(ctx context.Context, requestID string) (*domain.RideGroup, error) {
	return r.findOne(ctx, `SELECT `+groupColumns+` FROM ride_groups WHERE ride_request_id = $1`, requestID)
}

func (r *GroupPgRepository) findOne(ctx context.Context, query, arg string) (*domain.RideGroup, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, r.fail("db_find_ride_group_failed", arg, "query ride group", err)
	}
	return g, nil
}

// UpdateIfVersion — compare-and-swap: строка меняется, только если version не сдвинулся.
// 0 затронутых строк при существующей группе — проигранный CAS.
func (r *GroupPgRepository) UpdateIfVersion(ctx context.Context, g *domain.RideGroup, expected int64) (bool, error) {
	query := `
		UPDATE ride_groups
		SET total_capacity = $3,
		    remaining_capacity = $4,
		    members = $5,
		    updated_at = $6,
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var version int64
	err := r.pool.QueryRow(ctx, query,
		g.ID,
		expected,
		g.TotalCapacity,
		g.RemainingCapacity,
		g.Members,
		g.UpdatedAt,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, r.ensureExists(ctx, g.ID)
		}
		return false, r.fail("db_update_ride_group_failed", g.ID, "update ride group", err)
	}

	g.Version = version
	return true, nil
}

// ensureExists отличает проигранный CAS от удаленной группы
func (r *GroupPgRepository) ensureExists(ctx context.Context, groupID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ride_groups WHERE id = $1)`, groupID).Scan(&exists); err != nil {
		return r.fail("db_check_ride_group_failed", groupID, "check ride group", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupPgRepository) Delete(ctx context.Context, groupID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ride_groups WHERE id = $1`, groupID)
	if err != nil {
		return r.fail("db_delete_ride_group_failed", groupID, "delete ride group", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupPgRepository) List(ctx context.Context) ([]*domain.RideGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+groupColumns+` FROM ride_groups ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, r.fail("db_list_ride_groups_failed", "", "list ride groups", err)
	}
	defer rows.Close()

	var out []*domain.RideGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, r.fail("db_scan_ride_group_failed", "", "scan ride group", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("db_list_ride_groups_failed", "", "iterate ride groups", err)
	}
	return out, nil
}

func (r *GroupPgRepository) fail(action, groupID, op string, err error) error {
	r.log.Error(logger.Entry{
		Action:  action,
		Message: err.Error(),
		GroupID: groupID,
		Error:   &logger.ErrObj{Msg: err.Error()},
	})
	return domain.StoreError(op, err)
}
