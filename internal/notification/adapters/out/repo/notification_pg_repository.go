package repo

import (
	"context"
	"fmt"

	"github.com/spartan077/Taxi-Share/internal/notification/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationPgRepository — PostgreSQL репозиторий notifications
type NotificationPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewNotificationPgRepository(pool *pgxpool.Pool, log *logger.Logger) *NotificationPgRepository {
	return &NotificationPgRepository{pool: pool, log: log}
}

func (r *NotificationPgRepository) Insert(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, message, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.pool.Exec(ctx, query, n.ID, n.UserID, n.Message, n.Type, n.Read, n.CreatedAt); err != nil {
		return r.fail("db_insert_notification_failed", "insert notification", err)
	}
	return nil
}

func (r *NotificationPgRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	return r.list(ctx, `
		SELECT id, user_id, message, type, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
}

func (r *NotificationPgRepository) ListAll(ctx context.Context, limit int) ([]*domain.Notification, error) {
	return r.list(ctx, `
		SELECT id, user_id, message, type, read, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
}

func (r *NotificationPgRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.fail("db_list_notifications_failed", "list notifications", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.Notification])
	if err != nil {
		return nil, r.fail("db_scan_notifications_failed", "scan notifications", err)
	}
	return items, nil
}

func (r *NotificationPgRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&n)
	if err != nil {
		return 0, r.fail("db_count_notifications_failed", "count notifications", err)
	}
	return n, nil
}

func (r *NotificationPgRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND ($2::text = '' OR user_id = $2::text)`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return r.fail("db_mark_notification_read_failed", "mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationPgRepository) fail(action, op string, err error) error {
	r.log.Error(logger.Entry{
		Action:  action,
		Message: err.Error(),
		Error:   &logger.ErrObj{Msg: err.Error()},
	})
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
