package notify

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventPaymentSubmitted = "payment.submitted"
	EventPaymentResolved  = "payment.resolved"
)

// Event is the JSON frame pushed to connected clients.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// Notifier delivers events after a mutation has committed. Delivery is
// best-effort and never reports failure to the caller.
type Notifier interface {
	NotifyUser(userID string, evt Event)
	NotifyRole(role string, evt Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) NotifyUser(string, Event) {}
func (Nop) NotifyRole(string, Event) {}
