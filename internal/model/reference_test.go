package model

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceRe = regexp.MustCompile(`^VN\d{4}-\d{6}[0-9A-F]{6}$`)

func TestNewBookingReferenceFormat(t *testing.T) {
	at := time.Date(2026, 7, 10, 12, 30, 0, 0, time.UTC)
	ref := NewBookingReference(at)
	require.Regexp(t, referenceRe, ref)
	assert.Equal(t, "VN2026-", ref[:7])
}

func TestNewBookingReferenceVaries(t *testing.T) {
	at := time.Now().UTC()
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		ref := NewBookingReference(at)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
