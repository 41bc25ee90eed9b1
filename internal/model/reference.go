package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBookingReference generates the human-readable reference assigned
// to a booking at creation: VN<year>-<6-digit time suffix><6-char
// random suffix>. The time suffix is the current unix-millisecond
// clock modulo 10^6 and the random suffix comes from a UUID, so a
// collision requires both a same-millisecond clash and a 24-bit random
// clash. The bookings table carries a unique index on the column as a
// backstop. References are never reassigned.
func NewBookingReference(at time.Time) string {
	timePart := at.UnixMilli() % 1_000_000
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("VN%d-%06d%s", at.Year(), timePart, random)
}
