package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/spartan077/Taxi-Share/internal/notification/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/notification/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationService сохраняет уведомления и доставляет их в websocket
type NotificationService struct {
	repo   out.NotificationRepository
	pusher out.Pusher
	log    *logger.Logger
	now    func() time.Time
}

func NewNotificationService(repo out.NotificationRepository, pusher out.Pusher, log *logger.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify сохраняет уведомление и пушит его, если пользователь онлайн.
// Ошибка push не возвращается: запись в таблице уже есть.
func (s *NotificationService) Notify(ctx context.Context, recipientID, message, category string) error {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    recipientID,
		Message:   message,
		Type:      category,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if s.pusher == nil {
		return nil
	}
	delivered, err := s.pusher.SendToUserJSON(recipientID, domain.Push{Kind: "notification", Notification: n})
	if err != nil {
		s.log.Warn(logger.Entry{
			Action:  "notification_push_failed",
			Message: err.Error(),
			Additional: map[string]any{
				"notification_id": n.ID,
				"user_id":         recipientID,
			},
		})
		return nil
	}
	s.log.Debug(logger.Entry{
		Action:  "notification_sent",
		Message: category,
		Additional: map[string]any{
			"notification_id": n.ID,
			"user_id":         recipientID,
			"delivered_live":  delivered,
		},
	})
	return nil
}

// List — свои уведомления; админ видит все
func (s *NotificationService) List(ctx context.Context, viewer auth.Viewer, limit int) ([]*domain.Notification, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	if viewer.IsAdmin() {
		return s.repo.ListAll(ctx, limit)
	}
	return s.repo.ListForUser(ctx, viewer.UserID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, viewer auth.Viewer) (int, error) {
	return s.repo.UnreadCount(ctx, viewer.UserID)
}

// MarkRead — пользователь отмечает свое уведомление, админ любое
func (s *NotificationService) MarkRead(ctx context.Context, viewer auth.Viewer, id string) error {
	owner := viewer.UserID
	if viewer.IsAdmin() {
		owner = ""
	}
	return s.repo.MarkRead(ctx, id, owner)
}
