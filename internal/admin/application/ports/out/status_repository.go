package out

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/admin/domain"
)

// StatusRepository — таблица ride_status (одна строка на группу)
type StatusRepository interface {
	// Get возвращает nil без ошибки, если отметок еще нет
	Get(ctx context.Context, groupID string) (*domain.RideStatus, error)

	// Upsert создает или перезаписывает строку группы
	Upsert(ctx context.Context, status *domain.RideStatus) error

	// ListAll — все отметки по group id
	ListAll(ctx context.Context) (map[string]*domain.RideStatus, error)
}
