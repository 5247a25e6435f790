// Package repository defines sentinel error values shared by the
// repositories. Handlers use errors.Is against these to pick the HTTP
// status for a failure without inspecting SQL errors themselves.
package repository

import "errors"

// ErrFlightNotFound is returned when a flight does not exist or has
// been cancelled and is therefore invisible to booking. Handlers
// translate this into 404.
var ErrFlightNotFound = errors.New("flight not found")

// ErrFlightUnavailable is returned when a flight exists but its state
// does not admit new reservations (airborne, landed). Maps to 400.
var ErrFlightUnavailable = errors.New("flight not available for booking")

// ErrNoSeats is returned by the seat ledger when seats_available has
// reached zero. Maps to 400.
var ErrNoSeats = errors.New("no seats available")

// ErrNotPending is returned when a reservation is not in the PENDING
// state required by the requested transition. Maps to 409 for
// cancellation and 404 for purchase finalization (the original API
// reports an ineligible reservation as "not valid or already
// processed").
var ErrNotPending = errors.New("reservation is not pending")

// ErrForbidden is returned when the caller references a resource owned
// by someone else, e.g. paying with another user's card. Maps to 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCard is returned when a card number contains no digits
// after normalization. Maps to 400.
var ErrInvalidCard = errors.New("invalid card number")

// ErrEmailExists is returned on registration when the email is taken.
// Maps to 409.
var ErrEmailExists = errors.New("email already exists")
