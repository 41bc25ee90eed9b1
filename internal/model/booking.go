package model

import "time"

// Customer holds the identity fields collected in the booking funnel.
// All string fields are sanitized before a Booking is created.
//
// Fields:
//  Name            – full name of the renter.
//  Email           – contact email, required and shape-checked.
//  Phone           – contact phone, digits and separators only.
//  Age             – renter age; must be within [21,80].
//  LicenseCategory – driving-license category (e.g. "A1", "B").
type Customer struct {
	Name            string `json:"name"`             // bookings.customer_name
	Email           string `json:"email"`            // bookings.customer_email
	Phone           string `json:"phone"`            // bookings.customer_phone
	Age             int    `json:"age"`              // bookings.customer_age
	LicenseCategory string `json:"license_category"` // bookings.license_category
}

// Rental describes what is being booked. A booking always occupies
// exactly one calendar date; EndDate is display-only and, when set,
// must equal StartDate.
type Rental struct {
	Model      string     `json:"model"`             // bookings.vespa_model
	StartDate  string     `json:"start_date"`        // bookings.start_date (YYYY-MM-DD)
	EndDate    string     `json:"end_date,omitempty"`
	RentalType RentalType `json:"rental_type"`       // bookings.rental_type
	Route      string     `json:"route,omitempty"`   // bookings.route
	Helmet     bool       `json:"helmet"`            // bookings.helmet
	Message    string     `json:"message,omitempty"` // bookings.message
}

// Workflow tracks which lifecycle side effects have fired for a
// booking. The boolean flags are monotonic: once set they are never
// reset by normal operation.
type Workflow struct {
	ConfirmationEmailSent bool       `json:"confirmation_email_sent"` // bookings.wf_confirmation_email_sent
	PaymentProcessed      bool       `json:"payment_processed"`       // bookings.wf_payment_processed
	ThankYouEmailSent     bool       `json:"thank_you_email_sent"`    // bookings.wf_thank_you_email_sent
	CompletedAt           *time.Time `json:"completed_at,omitempty"`  // bookings.wf_completed_at
}

// Documents records acceptance of the contractual documents required
// to finalize a booking, plus an optional signature image reference
// supplied by the external blob store.
type Documents struct {
	RentalAgreement bool   `json:"rental_agreement"` // bookings.doc_rental_agreement
	Terms           bool   `json:"terms"`            // bookings.doc_terms
	PrivacyPolicy   bool   `json:"privacy_policy"`   // bookings.doc_privacy_policy
	SignatureRef    string `json:"signature_ref,omitempty"`
}

// AllAccepted reports whether every required document has been accepted.
func (d Documents) AllAccepted() bool {
	return d.RentalAgreement && d.Terms && d.PrivacyPolicy
}

// Metadata carries request-trace and bookkeeping fields that have no
// business meaning of their own.
type Metadata struct {
	Language  string    `json:"language,omitempty"` // bookings.meta_language
	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"` // bookings.created_at
	UpdatedAt time.Time `json:"updated_at"` // bookings.updated_at
}

// Booking is the central entity of the reservation ledger. It is
// created once in StatusPending by the public funnel and afterwards
// mutated only through the lifecycle state machine or an explicit
// admin edit of non-status fields.
type Booking struct {
	ID        uint64    `json:"id"`                // bookings.id
	Reference string    `json:"booking_reference"` // bookings.booking_reference (unique)
	Status    Status    `json:"status"`            // bookings.status
	Customer  Customer  `json:"customer"`
	Rental    Rental    `json:"rental"`
	Pricing   Pricing   `json:"pricing"`
	Workflow  Workflow  `json:"workflow"`
	Documents Documents `json:"documents"`
	Metadata  Metadata  `json:"metadata"`
}

// Active reports whether the booking occupies capacity on its start
// date. Cancelled bookings free their date immediately.
func (b *Booking) Active() bool { return b.Status != StatusCancelled }
