// Package repository provides data access to the reservation ledger.
// Sentinel errors defined here let handlers distinguish failure
// scenarios without inspecting SQL details; internal error text is
// never shown to end users.
package repository

import "errors"

// ErrNotFound is returned when a booking (or related record) does not
// exist. Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDateFull is returned by the capacity-checked create path when the
// requested date already carries fleet-size active bookings. Handlers
// translate this into an HTTP 409 response.
var ErrDateFull = errors.New("date full")
