package model

// RentalType selects the time slot a rental occupies within its
// calendar date. Full-day rentals and half-day slots share the same
// capacity pool: each booking consumes one unit for the whole date.
type RentalType string

const (
	RentalFull    RentalType = "full"
	RentalMorning RentalType = "morning"
	RentalEvening RentalType = "evening"
)

// Valid reports whether t is a known rental type.
func (t RentalType) Valid() bool {
	return t == RentalFull || t == RentalMorning || t == RentalEvening
}

// Prices are stored in euro cents. The security deposit is fixed and
// refunded outside this system.
const (
	PriceFullDayCents = 8900
	PriceHalfDayCents = 5900
	PriceHelmetCents  = 500
	DepositCents      = 15000
)

// Pricing holds the monetary breakdown of a booking. Subtotal and
// Total are always derived from the other components and never stored
// independently of them.
type Pricing struct {
	BaseCents     uint32 `json:"base_cents"`     // bookings.price_base_cents
	HelmetCents   uint32 `json:"helmet_cents"`   // bookings.price_helmet_cents
	SubtotalCents uint32 `json:"subtotal_cents"` // base + helmet
	DepositCents  uint32 `json:"deposit_cents"`  // fixed security deposit
	TotalCents    uint32 `json:"total_cents"`    // subtotal + deposit
}

// BasePriceCents returns the base rate for a rental type. Unknown
// types price as full day; validation rejects them before money ever
// matters.
func BasePriceCents(t RentalType) uint32 {
	if t == RentalMorning || t == RentalEvening {
		return PriceHalfDayCents
	}
	return PriceFullDayCents
}

// ComputePricing derives the full monetary breakdown from the rental
// type and helmet flag. It is a pure function: recomputing on the same
// inputs always yields the same output, and callers must use it
// instead of trusting client-submitted totals.
func ComputePricing(t RentalType, helmet bool) Pricing {
	p := Pricing{
		BaseCents:    BasePriceCents(t),
		DepositCents: DepositCents,
	}
	if helmet {
		p.HelmetCents = PriceHelmetCents
	}
	p.SubtotalCents = p.BaseCents + p.HelmetCents
	p.TotalCents = p.SubtotalCents + p.DepositCents
	return p
}
