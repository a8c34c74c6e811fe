package event

import "context"

type EventType string

const (
	AppointmentCreated       EventType = "appointment.created"
	AppointmentStatusChanged EventType = "appointment.status_changed"
	AppointmentDeleted       EventType = "appointment.deleted"
)

// Emitter publishes domain events. Emitting is best-effort: a failure is
// recorded but never fails the operation that produced the event.
type Emitter interface {
	Emit(ctx context.Context, eventType EventType, payload interface{})
}

// NopEmitter drops every event; it is used when Redis is disabled.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, EventType, interface{}) {}

// StatusChange is the payload of AppointmentStatusChanged
type StatusChange struct {
	AppointmentID string `json:"appointmentId"`
	From          string `json:"from"`
	To            string `json:"to"`
}
