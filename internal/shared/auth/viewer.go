package auth

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/model"
)

// Viewer — идентичность текущего пользователя (read-only)
type Viewer struct {
	UserID string
	Role   string
	Gender string
}

func (v Viewer) IsAdmin() bool { return v.Role == model.RoleAdmin }

func (v Viewer) IsMale() bool { return v.Gender == model.GenderMale }

type viewerKey struct{}

// WithViewer кладет Viewer в контекст запроса
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom достает Viewer из контекста
func ViewerFrom(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(viewerKey{}).(Viewer)
	return v, ok && v.UserID != ""
}
