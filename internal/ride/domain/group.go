package domain

import (
	"fmt"
	"slices"
	"time"
)

// RideGroup — состав и счетчик мест для одного RideRequest.
//
// Создатель запроса занимает SeatsRequired мест, но в Members не хранится:
// RemainingCapacity + len(Members) + SeatsRequired == TotalCapacity,
// пока админ не переопределил значения через Resize.
type RideGroup struct {
	ID                string    `json:"id" db:"id"`
	RideRequestID     string    `json:"ride_request_id" db:"ride_request_id"`
	TotalCapacity     int       `json:"total_capacity" db:"total_capacity"`
	RemainingCapacity int       `json:"remaining_capacity" db:"remaining_capacity"`
	Members           []string  `json:"members" db:"members"`
	Version           int64     `json:"version" db:"version"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// NewGroup создает пустую группу для запроса
func NewGroup(id string, req *RideRequest, maxPassengers int, now time.Time) (*RideGroup, error) {
	if maxPassengers <= 0 || req.SeatsRequired <= 0 {
		return nil, fmt.Errorf("%w: max passengers %d, seats required %d", ErrInvalidCapacity, maxPassengers, req.SeatsRequired)
	}
	if req.SeatsRequired > maxPassengers {
		return nil, fmt.Errorf("%w: %d seats required, vehicle holds %d", ErrInvalidCapacity, req.SeatsRequired, maxPassengers)
	}
	return &RideGroup{
		ID:                id,
		RideRequestID:     req.ID,
		TotalCapacity:     maxPassengers,
		RemainingCapacity: maxPassengers - req.SeatsRequired,
		Members:           []string{},
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (g *RideGroup) HasMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

func (g *RideGroup) IsFull() bool {
	return g.RemainingCapacity <= 0
}

// Clone — глубокая копия; мутации ниже работают только с копией
func (g *RideGroup) Clone() *RideGroup {
	c := *g
	c.Members = slices.Clone(g.Members)
	if c.Members == nil {
		c.Members = []string{}
	}
	return &c
}

// Join возвращает новое состояние группы с добавленным пользователем.
// Исходная группа не меняется.
func (g *RideGroup) Join(creatorID, userID string, now time.Time) (*RideGroup, error) {
	if userID == creatorID || g.HasMember(userID) {
		return nil, ErrAlreadyMember
	}
	if g.IsFull() {
		return nil, ErrGroupFull
	}
	next := g.Clone()
	next.Members = append(next.Members, userID)
	next.RemainingCapacity--
	next.UpdatedAt = now
	return next, nil
}

// Leave удаляет участника. Создатель не в Members, поэтому получает ErrNotAMember.
// После админского override счетчик не поднимается выше TotalCapacity.
func (g *RideGroup) Leave(userID string, now time.Time) (*RideGroup, error) {
	idx := slices.Index(g.Members, userID)
	if idx < 0 {
		return nil, ErrNotAMember
	}
	next := g.Clone()
	next.Members = slices.Delete(next.Members, idx, idx+1)
	next.RemainingCapacity = min(next.RemainingCapacity+1, next.TotalCapacity)
	next.UpdatedAt = now
	return next, nil
}

// Resize — админский override обоих счетчиков как есть.
// newTotal обязан вместить текущих участников и создателя; места, которые
// создатель резервировал сверх одного, override не охраняет.
func (g *RideGroup) Resize(newTotal, newRemaining int, now time.Time) (*RideGroup, error) {
	switch {
	case newTotal <= 0 || newRemaining <= 0:
		return nil, fmt.Errorf("%w: values must be positive", ErrInvalidCapacity)
	case newRemaining > newTotal:
		return nil, fmt.Errorf("%w: remaining %d exceeds total %d", ErrInvalidCapacity, newRemaining, newTotal)
	case newTotal < len(g.Members)+1:
		return nil, fmt.Errorf("%w: total %d cannot hold %d members and creator", ErrInvalidCapacity, newTotal, len(g.Members))
	}
	next := g.Clone()
	next.TotalCapacity = newTotal
	next.RemainingCapacity = newRemaining
	next.UpdatedAt = now
	return next, nil
}

// IsDerived — счетчики совпадают с тем, что следует из состава группы
func (g *RideGroup) IsDerived(creatorSeats int) bool {
	return g.RemainingCapacity+len(g.Members)+creatorSeats == g.TotalCapacity
}

// EffectiveMembers — создатель и все участники группы, создатель первым
func EffectiveMembers(g *RideGroup, req *RideRequest) []string {
	out := make([]string, 0, len(g.Members)+1)
	out = append(out, req.UserID)
	for _, m := range g.Members {
		if m != req.UserID {
			out = append(out, m)
		}
	}
	return out
}
