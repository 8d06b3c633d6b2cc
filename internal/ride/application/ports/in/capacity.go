package in

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
)

// Группа адресуется через ride_request_id: связь один-к-одному.

// JoinGroupUseCase — вступление зрителя в группу запроса
type JoinGroupUseCase interface {
	Join(ctx context.Context, viewer auth.Viewer, requestID string) (*domain.RideGroup, error)
}

// LeaveGroupUseCase — выход зрителя из группы
type LeaveGroupUseCase interface {
	Leave(ctx context.Context, viewer auth.Viewer, requestID string) (*domain.RideGroup, error)
}

// RemoveMemberUseCase — админ удаляет участника
type RemoveMemberUseCase interface {
	RemoveMember(ctx context.Context, admin auth.Viewer, requestID, userID string) (*domain.RideGroup, error)
}

// ResizeGroupUseCase — админский override вместимости
type ResizeGroupUseCase interface {
	Resize(ctx context.Context, admin auth.Viewer, requestID string, newTotal, newRemaining int) (*domain.RideGroup, error)
}

// CancelRequestUseCase — отмена запроса создателем или админом
type CancelRequestUseCase interface {
	Cancel(ctx context.Context, viewer auth.Viewer, requestID string) (*domain.RideRequest, error)
}

// DeleteGroupUseCase — админ удаляет группу и запрос
type DeleteGroupUseCase interface {
	DeleteGroup(ctx context.Context, admin auth.Viewer, requestID string) error
}
