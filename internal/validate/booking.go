package validate

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vespanova/booking-api/internal/model"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Submission is the raw payload of the public booking funnel. Struct
// tags carry the field-level rules checked by validator/v10; the date
// and document rules below are checked by hand because they depend on
// the clock and on cross-field state.
type Submission struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Age             int    `json:"age" validate:"required,gte=21,lte=80"`
	LicenseCategory string `json:"license_category" validate:"required"`

	Model      string `json:"model" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	RentalType string `json:"rental_type" validate:"required,oneof=full morning evening"`
	Route      string `json:"route"`
	Helmet     bool   `json:"helmet"`
	Message    string `json:"message"`

	AcceptRentalAgreement bool   `json:"accept_rental_agreement"`
	AcceptTerms           bool   `json:"accept_terms"`
	AcceptPrivacyPolicy   bool   `json:"accept_privacy_policy"`
	SignatureRef          string `json:"signature_ref"`

	Language string `json:"language"`
	Source   string `json:"source"`
	Referrer string `json:"referrer"`
}

// Sanitize normalizes every string field in place. It never fails;
// fields that cannot be repaired are emptied so Check reports them.
func (s *Submission) Sanitize() {
	s.Name = CleanString(s.Name, MaxName)
	s.Email = CleanEmail(s.Email)
	s.Phone = CleanPhone(s.Phone)
	s.LicenseCategory = CleanString(s.LicenseCategory, 20)
	s.Model = CleanString(s.Model, MaxName)
	s.StartDate = CleanString(s.StartDate, 10)
	s.RentalType = CleanString(s.RentalType, 20)
	s.Route = CleanString(s.Route, MaxGeneric)
	s.Message = CleanString(s.Message, MaxMessage)
	s.SignatureRef = CleanURL(s.SignatureRef)
	s.Language = CleanString(s.Language, 10)
	s.Source = CleanString(s.Source, MaxName)
	s.Referrer = CleanURL(s.Referrer)
}

var check = validator.New()

// Check validates a sanitized submission and returns every violation
// as a human-readable string. An empty slice means the submission is
// acceptable. today is the caller's current date; bookings must start
// strictly later than tomorrow, so same-day and next-day dates are
// rejected alongside past ones.
func Check(s Submission, today time.Time) []string {
	var errs []string
	if err := check.Struct(s); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs = append(errs, messageFor(fe))
			}
		} else {
			errs = append(errs, "submission could not be validated")
		}
	}
	if s.StartDate != "" {
		d, err := time.Parse(DateLayout, s.StartDate)
		if err != nil {
			errs = append(errs, "start_date must be a valid date in YYYY-MM-DD format")
		} else {
			tomorrow := today.AddDate(0, 0, 1)
			if !d.After(time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)) {
				errs = append(errs, "start_date must be at least two days in the future")
			}
		}
	}
	if !s.AcceptRentalAgreement || !s.AcceptTerms || !s.AcceptPrivacyPolicy {
		errs = append(errs, "all required documents must be accepted")
	}
	return errs
}

// messageFor turns a validator field error into the user-facing string
// shown in the funnel's error list.
func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "name must be at least 2 characters"
	case "Email":
		return "a valid email address is required"
	case "Phone":
		return "a phone number is required"
	case "Age":
		return "age must be between 21 and 80"
	case "LicenseCategory":
		return "a driving-license category is required"
	case "Model":
		return "a vespa model is required"
	case "StartDate":
		return "a start date is required"
	case "RentalType":
		return "rental_type must be one of full, morning, evening"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// ToBooking converts a sanitized, validated submission into a Booking
// ready for the reservation writer. Pricing is recomputed here and the
// status plus workflow flags are initialized; the repository assigns
// the reference and timestamps.
func ToBooking(s Submission) *model.Booking {
	return &model.Booking{
		Status: model.StatusPending,
		Customer: model.Customer{
			Name:            s.Name,
			Email:           s.Email,
			Phone:           s.Phone,
			Age:             s.Age,
			LicenseCategory: s.LicenseCategory,
		},
		Rental: model.Rental{
			Model:      s.Model,
			StartDate:  s.StartDate,
			EndDate:    s.StartDate,
			RentalType: model.RentalType(s.RentalType),
			Route:      s.Route,
			Helmet:     s.Helmet,
			Message:    s.Message,
		},
		Pricing: model.ComputePricing(model.RentalType(s.RentalType), s.Helmet),
		Documents: model.Documents{
			RentalAgreement: s.AcceptRentalAgreement,
			Terms:           s.AcceptTerms,
			PrivacyPolicy:   s.AcceptPrivacyPolicy,
			SignatureRef:    s.SignatureRef,
		},
		Metadata: model.Metadata{
			Language: s.Language,
			Source:   s.Source,
			Referrer: s.Referrer,
		},
	}
}
