// Package queue moves booking lifecycle events from the durable
// outbox to the external automation endpoint. The outbox drainer
// publishes pending rows to the message broker; the consumer delivers
// them as webhook calls and records each attempt in the email log.
package queue

import (
	"encoding/json"
	"time"

	"github.com/vespanova/booking-api/internal/model"
)

// EventsQueueName is the broker queue carrying booking events.
const EventsQueueName = "booking.events"

// FlattenBooking builds the wire payload for a lifecycle event. The
// downstream automation system consumes first-level key/value pairs
// only, so the nested booking record is flattened here and never sent
// raw. oldStatus equals newStatus for the created event.
func FlattenBooking(event string, b *model.Booking, oldStatus, newStatus model.Status, at time.Time) map[string]any {
	return map[string]any{
		"event":             event,
		"timestamp":         at.UTC().Format(time.RFC3339),
		"booking_id":        b.ID,
		"booking_reference": b.Reference,
		"status":            string(newStatus),
		"old_status":        string(oldStatus),
		"new_status":        string(newStatus),
		"customer_name":     b.Customer.Name,
		"customer_email":    b.Customer.Email,
		"customer_phone":    b.Customer.Phone,
		"customer_age":      b.Customer.Age,
		"license_category":  b.Customer.LicenseCategory,
		"vespa_model":       b.Rental.Model,
		"start_date":        b.Rental.StartDate,
		"rental_type":       string(b.Rental.RentalType),
		"helmet":            b.Rental.Helmet,
		"route":             b.Rental.Route,
		"base_cents":        b.Pricing.BaseCents,
		"helmet_cents":      b.Pricing.HelmetCents,
		"subtotal_cents":    b.Pricing.SubtotalCents,
		"deposit_cents":     b.Pricing.DepositCents,
		"total_cents":       b.Pricing.TotalCents,
		"language":          b.Metadata.Language,
		"source":            b.Metadata.Source,
	}
}

// EncodeBookingEvent marshals the flattened payload for storage in the
// outbox. The stored bytes are delivered downstream as-is.
func EncodeBookingEvent(event string, b *model.Booking, oldStatus, newStatus model.Status, at time.Time) ([]byte, error) {
	return json.Marshal(FlattenBooking(event, b, oldStatus, newStatus, at))
}

// emailTypes maps an event to the email the automation system sends
// for it. Events without an entry still reach the webhook but do not
// represent an outbound email.
var emailTypes = map[string]string{
	model.EventBookingCreated:   "booking_received",
	model.EventBookingConfirmed: "confirmation_email",
	model.EventBookingCompleted: "thank_you_email",
	model.EventBookingCancelled: "cancellation_email",
}

// workflowFlags maps an event to the monotonic workflow flag set once
// its webhook call succeeds.
var workflowFlags = map[string]string{
	model.EventBookingConfirmed: "confirmation_email_sent",
	model.EventBookingCompleted: "thank_you_email_sent",
}
