package model

import "time"

// Ticket delivery methods accepted by POST /compras.
const (
    DeliveryAirportPickup = "airport pickup"
    DeliveryElectronic    = "electronic delivery"
)

// ValidDeliveryMethod reports whether m is a supported delivery method.
func ValidDeliveryMethod(m string) bool {
    return m == DeliveryAirportPickup || m == DeliveryElectronic
}

// Purchase mirrors the `purchases` table.  Created exactly once per
// reservation when a PENDING reservation is finalized; immutable
// afterwards.  TotalAmount is the pre-tax subtotal (base fare plus
// category surcharge); tax lives on the invoice.
type Purchase struct {
    ID             uint64    `json:"id"`
    ReservationID  uint64    `json:"reservation_id"`
    PurchasedAt    time.Time `json:"purchased_at"`
    DeliveryMethod string    `json:"delivery_method"`
    TotalAmount    float64   `json:"total_amount"`
}

// Invoice mirrors the `invoices` table.  TicketID is NULL at insert
// time and backfilled once the ticket row exists; the invoice and the
// ticket reference each other, so one side has to be linked late.
type Invoice struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"user_id"`
    PurchaseID  uint64    `json:"purchase_id"`
    CardID      uint64    `json:"card_id"`
    TicketID    *uint64   `json:"ticket_id"`
    IssuedAt    time.Time `json:"issued_at"`
    TotalAmount float64   `json:"total_amount"`
    TaxAmount   float64   `json:"tax_amount"`
}

// Ticket mirrors the `tickets` table.  One per purchase; carries the
// assigned seat designator.
type Ticket struct {
    ID         uint64 `json:"id"`
    InvoiceID  uint64 `json:"invoice_id"`
    PurchaseID uint64 `json:"purchase_id"`
    UserID     uint64 `json:"user_id"`
    SeatNumber string `json:"seat_number"`
}
