package domain

import "time"

// GroupEvent — событие группы, публикуется в group_topic
type GroupEvent struct {
	ID                string    `json:"id"`
	EventType         string    `json:"event_type"`
	GroupID           string    `json:"group_id"`
	RideRequestID     string    `json:"ride_request_id"`
	UserID            string    `json:"user_id,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	TotalCapacity     int       `json:"total_capacity"`
	RemainingCapacity int       `json:"remaining_capacity"`
	Members           []string  `json:"members"`
	ActorID           string    `json:"actor_id,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewGroupEvent снимает состояние группы в событие
func NewGroupEvent(id, eventType string, g *RideGroup, at time.Time) GroupEvent {
	members := make([]string, len(g.Members))
	copy(members, g.Members)
	return GroupEvent{
		ID:                id,
		EventType:         eventType,
		GroupID:           g.ID,
		RideRequestID:     g.RideRequestID,
		TotalCapacity:     g.TotalCapacity,
		RemainingCapacity: g.RemainingCapacity,
		Members:           members,
		OccurredAt:        at,
	}
}
