// Package queue defines message payloads exchanged over the broker and
// the background consumer that reacts to them.
package queue

// QueueName is the durable queue carrying reservation change events.
const QueueName = "reservation.changed"

// Actions carried by ReservationChangedEvent.
const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
	ActionBoarded   = "boarded"
)

// ReservationChangedEvent is published after a reservation is created,
// cancelled or boarded.  Topics name the cached views the change
// invalidates; consumers that do not cache simply ignore them.  The
// event is a best-effort signal, never part of the booking outcome.
type ReservationChangedEvent struct {
	Action          string   `json:"action"`
	ReservationID   uint64   `json:"reservation_id"`
	UserID          uint64   `json:"user_id"`
	ScheduleID      uint64   `json:"schedule_id"`
	ReservationDate string   `json:"reservation_date"`
	Topics          []string `json:"topics"`
	OccurredAt      string   `json:"occurred_at"`
}

// TopicForPath converts an HTTP route path into the topic segment used
// in cache keys and invalidation events, e.g. "/v1/routes" becomes
// "v1_routes".  Cache middleware and publishers must agree on this.
func TopicForPath(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '/', ':', '*':
			if len(out) > 0 && out[len(out)-1] != '_' {
				out = append(out, '_')
			}
		default:
			out = append(out, path[i])
		}
	}
	return string(out)
}
