package out

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/notification/domain"
)

// NotificationRepository — хранилище notifications
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error

	// ListForUser — уведомления пользователя, новые первыми
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)

	// ListAll — все уведомления (админ), новые первыми
	ListAll(ctx context.Context, limit int) ([]*domain.Notification, error)

	UnreadCount(ctx context.Context, userID string) (int, error)

	// MarkRead помечает уведомление прочитанным. Пустой userID — без проверки владельца.
	MarkRead(ctx context.Context, id, userID string) error
}

// Pusher — live-доставка подключенным клиентам
type Pusher interface {
	SendToUserJSON(userID string, data any) (int, error)
}
