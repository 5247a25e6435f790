// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseCompletedEvent is published after a purchase transaction commits.
// It carries enough information for downstream consumers to log and to send
// the confirmation email without querying the primary database.
type PurchaseCompletedEvent struct {
	PurchaseID     uint64  `json:"purchase_id"`
	InvoiceID      uint64  `json:"invoice_id"`
	TicketID       uint64  `json:"ticket_id"`
	ReservationID  uint64  `json:"reservation_id"`
	UserID         uint64  `json:"user_id"`
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	DeliveryMethod string  `json:"delivery_method"`
	SeatNumber     string  `json:"seat_number"`
	TotalAmount    float64 `json:"total_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	AirlineName    string  `json:"airline_name"`
	AirlineCode    string  `json:"airline_code"`
	OriginCity     string  `json:"origin_city"`
	OriginIata     string  `json:"origin_iata"`
	DestCity       string  `json:"destination_city"`
	DestIata       string  `json:"destination_iata"`
	DepartureAt    string  `json:"departure_at"`
	ArrivalAt      string  `json:"arrival_at"`
	PurchasedAt    string  `json:"purchased_at"`
}
