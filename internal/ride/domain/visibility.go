package domain

import (
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/auth"
)

// IsVisible — пара запрос/группа скрыта, только если группа заполнена
// и зритель не админ, не создатель и не участник.
func IsVisible(g *RideGroup, req *RideRequest, v auth.Viewer) bool {
	if g == nil || !g.IsFull() {
		return true
	}
	return v.IsAdmin() || req.UserID == v.UserID || g.HasMember(v.UserID)
}

// Filter — фильтры списка запросов; пустые поля не применяются
type Filter struct {
	Date        time.Time // календарный день; zero — без фильтра
	Source      string
	Destination string
	FemaleOnly  bool
}

// Matches проверяет запрос против фильтров и гендерных ограничений зрителя.
// Дата сравнивается по календарному дню в loc, маршрут — точным совпадением.
func (f Filter) Matches(req *RideRequest, v auth.Viewer, loc *time.Location) bool {
	if v.IsMale() && req.IsFemaleOnly() {
		return false
	}
	if f.FemaleOnly && !req.IsFemaleOnly() {
		return false
	}
	if !f.Date.IsZero() && !sameDay(f.Date, req.TimeSlot, loc) {
		return false
	}
	if f.Source != "" && f.Source != req.Source {
		return false
	}
	if f.Destination != "" && f.Destination != req.Destination {
		return false
	}
	return true
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// CanJoin — ограничения на вступление, не связанные с вместимостью
func CanJoin(req *RideRequest, v auth.Viewer) error {
	if req.IsCancelled() {
		return ErrRequestCancelled
	}
	if v.IsMale() && req.IsFemaleOnly() {
		return ErrGenderRestricted
	}
	return nil
}
