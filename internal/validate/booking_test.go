package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vespanova/booking-api/internal/model"
)

var today = time.Date(2026, 7, 1, 15, 4, 5, 0, time.UTC)

func validSubmission() Submission {
	return Submission{
		Name:            "Ana Petrova",
		Email:           "ana@example.com",
		Phone:           "+49 170 1234567",
		Age:             29,
		LicenseCategory: "AM",
		Model:           "Primavera 125",
		StartDate:       "2026-07-10",
		RentalType:      "full",
		Helmet:          true,

		AcceptRentalAgreement: true,
		AcceptTerms:           true,
		AcceptPrivacyPolicy:   true,

		Language: "en",
		Source:   "website",
	}
}

func TestCheckValidSubmission(t *testing.T) {
	assert.Empty(t, Check(validSubmission(), today))
}

func TestCheckCollectsAllErrors(t *testing.T) {
	s := Submission{StartDate: "not-a-date", Age: 17}
	s.Sanitize()
	errs := Check(s, today)
	// One submission with many violations reports all of them at once.
	assert.Contains(t, errs, "name must be at least 2 characters")
	assert.Contains(t, errs, "a valid email address is required")
	assert.Contains(t, errs, "a phone number is required")
	assert.Contains(t, errs, "age must be between 21 and 80")
	assert.Contains(t, errs, "start_date must be a valid date in YYYY-MM-DD format")
	assert.Contains(t, errs, "all required documents must be accepted")
}

func TestCheckStartDateRule(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"2026-06-30", false}, // yesterday
		{"2026-07-01", false}, // today
		{"2026-07-02", false}, // tomorrow
		{"2026-07-03", true},  // earliest bookable
		{"2026-08-15", true},
	}
	for _, tc := range cases {
		s := validSubmission()
		s.StartDate = tc.date
		errs := Check(s, today)
		if tc.ok {
			assert.Emptyf(t, errs, "date %s", tc.date)
		} else {
			assert.Containsf(t, errs, "start_date must be at least two days in the future", "date %s", tc.date)
		}
	}
}

func TestCheckAgeBounds(t *testing.T) {
	for _, age := range []int{21, 80} {
		s := validSubmission()
		s.Age = age
		assert.Emptyf(t, Check(s, today), "age %d", age)
	}
	for _, age := range []int{20, 81} {
		s := validSubmission()
		s.Age = age
		assert.Containsf(t, Check(s, today), "age must be between 21 and 80", "age %d", age)
	}
}

func TestCheckDocumentsRequired(t *testing.T) {
	s := validSubmission()
	s.AcceptPrivacyPolicy = false
	assert.Contains(t, Check(s, today), "all required documents must be accepted")
}

func TestSanitizeRepairsAndEmpties(t *testing.T) {
	s := Submission{
		Name:     "  <b>Ana</b>  ",
		Email:    "Ana@Example.COM",
		Phone:    "letters here",
		Referrer: "javascript:alert(1)",
	}
	s.Sanitize()
	assert.Equal(t, "bAna/b", s.Name)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.Equal(t, "", s.Phone)
	assert.Equal(t, "", s.Referrer)
}

func TestToBooking(t *testing.T) {
	s := validSubmission()
	b := ToBooking(s)
	require.NotNil(t, b)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, s.Email, b.Customer.Email)
	assert.Equal(t, s.StartDate, b.Rental.StartDate)
	assert.Equal(t, s.StartDate, b.Rental.EndDate)
	assert.Equal(t, model.RentalFull, b.Rental.RentalType)
	// Pricing is rederived server-side, never taken from the client.
	assert.Equal(t, model.ComputePricing(model.RentalFull, true), b.Pricing)
	assert.True(t, b.Documents.AllAccepted())
}
