// Package availability derives the per-date remaining-capacity view
// consulted by the public calendar and the admin console. The snapshot
// is always recomputed from live booking rows; it is never the source
// of truth.
package availability

import (
	"time"

	"github.com/jinzhu/now"

	"github.com/vespanova/booking-api/internal/model"
)

// BookingSummary is the per-booking detail attached to a date in admin
// mode. Public snapshots omit it.
type BookingSummary struct {
	ID         uint64           `json:"id"`
	Reference  string           `json:"booking_reference"`
	Status     model.Status     `json:"status"`
	Customer   string           `json:"customer"`
	RentalType model.RentalType `json:"rental_type"`
}

// Day is the availability of a single calendar date.
//
// Remaining is fleetSize minus the count of active (non-cancelled)
// bookings on the date and never goes negative. Bookable additionally
// requires the date to be far enough out: submissions must start
// strictly later than tomorrow, so the calendar blocks past dates,
// today and tomorrow regardless of capacity. The calendar and the
// submission validator share this cutoff so no clickable date is
// rejected on submit.
type Day struct {
	Date      string           `json:"date"`
	Occupied  int              `json:"occupied"`
	Remaining int              `json:"remaining"`
	Bookable  bool             `json:"bookable"`
	Bookings  []BookingSummary `json:"bookings,omitempty"`
}

// Snapshot maps every date of one month to its availability.
type Snapshot struct {
	Year      int            `json:"year"`
	Month     int            `json:"month"`
	FleetSize int            `json:"fleet_size"`
	Days      map[string]Day `json:"days"`
}

// MonthWindow returns the first and last calendar date of the given
// month in UTC. Booking queries filter start_date against this range.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	ref := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	n := now.New(ref)
	return n.BeginningOfMonth(), n.EndOfMonth()
}

// Build computes the snapshot for a month from the bookings whose
// start date falls inside it. Cancelled bookings do not occupy
// capacity. today decides which dates are still bookable; withDetail
// attaches per-booking summaries for the admin calendar.
func Build(year int, month time.Month, fleetSize int, bookings []model.Booking, today time.Time, withDetail bool) Snapshot {
	first, last := MonthWindow(year, month)
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	snap := Snapshot{
		Year:      year,
		Month:     int(month),
		FleetSize: fleetSize,
		Days:      make(map[string]Day),
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		snap.Days[key] = Day{
			Date:      key,
			Remaining: fleetSize,
			Bookable:  !d.Before(todayDate.AddDate(0, 0, 2)),
		}
	}
	for i := range bookings {
		b := &bookings[i]
		if !b.Active() {
			continue
		}
		day, ok := snap.Days[b.Rental.StartDate]
		if !ok {
			continue
		}
		day.Occupied++
		day.Remaining = fleetSize - day.Occupied
		if day.Remaining < 0 {
			day.Remaining = 0
		}
		if day.Remaining == 0 {
			day.Bookable = false
		}
		if withDetail {
			day.Bookings = append(day.Bookings, BookingSummary{
				ID:         b.ID,
				Reference:  b.Reference,
				Status:     b.Status,
				Customer:   b.Customer.Name,
				RentalType: b.Rental.RentalType,
			})
		}
		snap.Days[b.Rental.StartDate] = day
	}
	return snap
}
