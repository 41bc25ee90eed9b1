package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePricing(t *testing.T) {
	cases := []struct {
		name   string
		typ    RentalType
		helmet bool
		base   uint32
		extra  uint32
	}{
		{"full day", RentalFull, false, 8900, 0},
		{"full day with helmet", RentalFull, true, 8900, 500},
		{"morning", RentalMorning, false, 5900, 0},
		{"evening with helmet", RentalEvening, true, 5900, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ComputePricing(tc.typ, tc.helmet)
			assert.Equal(t, tc.base, p.BaseCents)
			assert.Equal(t, tc.extra, p.HelmetCents)
			assert.Equal(t, tc.base+tc.extra, p.SubtotalCents)
			assert.Equal(t, uint32(DepositCents), p.DepositCents)
			assert.Equal(t, p.SubtotalCents+p.DepositCents, p.TotalCents)
		})
	}
}

func TestComputePricingDeterministic(t *testing.T) {
	assert.Equal(t, ComputePricing(RentalFull, true), ComputePricing(RentalFull, true))
}

func TestRentalTypeValid(t *testing.T) {
	assert.True(t, RentalFull.Valid())
	assert.True(t, RentalMorning.Valid())
	assert.True(t, RentalEvening.Valid())
	assert.False(t, RentalType("weekend").Valid())
	assert.False(t, RentalType("").Valid())
}
