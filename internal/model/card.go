package model

import "time"

// CreditCard mirrors the `credit_cards` table.  The stored number is
// the normalized digit string; it is never returned to clients raw,
// only masked (see utils.MaskCardNumber).  Rows are immutable once
// created.
type CreditCard struct {
    ID           uint64    `json:"id"`
    UserID       uint64    `json:"user_id"`
    Number       string    `json:"-"`
    ExpiresAt    string    `json:"expires_at"`
    SecurityCode string    `json:"-"`
    Brand        string    `json:"brand"`
    CreatedAt    time.Time `json:"created_at"`
}
