package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("notification not found")
	ErrStoreUnavailable = errors.New("notification store unavailable")
)

// Notification — сообщение пользователю о событии в его поездке
type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Push — то, что уходит в websocket
type Push struct {
	Kind         string        `json:"kind"`
	Notification *Notification `json:"notification"`
}
