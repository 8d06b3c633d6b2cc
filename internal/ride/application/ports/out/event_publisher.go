package out

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
)

// EventPublisher — интерфейс для публикации событий групп в RabbitMQ
type EventPublisher interface {
	// PublishGroupEvent публикует событие группы
	// eventType: GROUP_CREATED | MEMBER_JOINED | MEMBER_REMOVED | GROUP_RESIZED | RIDE_CANCELLED | GROUP_DELETED
	PublishGroupEvent(ctx context.Context, event domain.GroupEvent) error
}
