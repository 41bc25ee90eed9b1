package model

// Event names recorded in the outbox and delivered to the external
// automation endpoint. Downstream workflows key off these strings, so
// they are part of the wire contract and must not change casually.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
)
