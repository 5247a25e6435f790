package model

import "time"

// Reservation states.  PENDING is the only non-terminal state: it can
// move to CONFIRMED (via a purchase) or CANCELLED.  A reservation holds
// exactly one seat of its flight's inventory while PENDING or
// CONFIRMED and returns it when cancelled.
const (
    ReservationPending   = "PENDING"
    ReservationConfirmed = "CONFIRMED"
    ReservationCancelled = "CANCELLED"
)

// ValidReservationState reports whether s is one of the three allowed
// reservation states.  Used by the administrative raw state update.
func ValidReservationState(s string) bool {
    switch s {
    case ReservationPending, ReservationConfirmed, ReservationCancelled:
        return true
    }
    return false
}

// Reservation mirrors the `reservations` table.  Each reservation
// belongs to one user, one flight and one seat category and represents
// a single seat hold.
type Reservation struct {
    ID         uint64    `json:"id"`
    UserID     uint64    `json:"user_id"`
    FlightID   uint64    `json:"flight_id"`
    CategoryID uint64    `json:"category_id"`
    ReservedAt time.Time `json:"reserved_at"`
    Status     string    `json:"status"`
}
