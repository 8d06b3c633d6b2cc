package out

import (
	"context"
	"time"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
)

// RequestRepository — хранилище ride_requests.
// Отсутствующая запись возвращает domain.ErrNotFound.
type RequestRepository interface {
	// Create создает новый запрос
	Create(ctx context.Context, req *domain.RideRequest) error

	// FindByID возвращает запрос по ID
	FindByID(ctx context.Context, requestID string) (*domain.RideRequest, error)

	// CancelPending атомарно переводит pending-запрос в cancelled и сдвигает
	// version его группы, чтобы параллельные CAS по группе проиграли.
	// false без ошибки — запрос существует, но уже не pending.
	CancelPending(ctx context.Context, requestID string, updatedAt time.Time) (bool, error)

	// Delete удаляет запрос
	Delete(ctx context.Context, requestID string) error

	// List возвращает все запросы, новые первыми
	List(ctx context.Context) ([]*domain.RideRequest, error)
}

// GroupRepository — хранилище ride_groups с условным обновлением по version
type GroupRepository interface {
	Create(ctx context.Context, group *domain.RideGroup) error

	FindByID(ctx context.Context, groupID string) (*domain.RideGroup, error)

	FindByRequestID(ctx context.Context, requestID string) (*domain.RideGroup, error)

	// UpdateIfVersion записывает счетчики и состав, только если version в
	// хранилище равен expected. При успехе group.Version = expected+1.
	// false без ошибки — CAS проигран.
	UpdateIfVersion(ctx context.Context, group *domain.RideGroup, expected int64) (bool, error)

	Delete(ctx context.Context, groupID string) error

	// List возвращает все группы, новые первыми
	List(ctx context.Context) ([]*domain.RideGroup, error)
}
