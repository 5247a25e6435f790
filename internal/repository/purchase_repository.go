package repository

import (
    "context"
    "database/sql"
)

// PurchaseRepo holds the queries used by the purchase flow: the
// eligible-reservation lock, the purchase/invoice/ticket inserts, the
// invoice ticket backfill, and the read-side joins for checkout and
// notification. All writes are *Tx methods; the orchestrating handler
// owns the single transaction that creates the three rows
// together-or-not-at-all.
type PurchaseRepo struct {
    db *sql.DB
}

// NewPurchaseRepo returns a PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *PurchaseRepo) DB() *sql.DB { return r.db }

// EligibleReservation is the row returned by LockEligibleTx: the
// pending reservation plus the pricing inputs joined from its flight
// and seat category.
type EligibleReservation struct {
    ReservationID uint64
    UserID        uint64
    FlightID      uint64
    CategoryID    uint64
    BasePrice     float64
    Surcharge     float64
}

// LockEligibleTx locks the reservation row and returns it together
// with the flight's base fare and the category surcharge, but only
// while the reservation is still PENDING. Concurrent finalizations of
// the same reservation serialize on this lock: the loser re-runs the
// query after the winner commits, finds the state CONFIRMED, and gets
// ErrNotPending. Missing reservations report the same error — the
// original API answers both with "not valid or already processed".
func (r *PurchaseRepo) LockEligibleTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (*EligibleReservation, error) {
    const q = `SELECT r.id, r.user_id, r.flight_id, r.category_id, v.price, c.surcharge
               FROM reservations r
               JOIN flights v ON v.id = r.flight_id
               JOIN seat_categories c ON c.id = r.category_id
               WHERE r.id = ? AND r.status = 'PENDING'
               FOR UPDATE`
    var e EligibleReservation
    err := tx.QueryRowContext(ctx, q, reservationID).Scan(
        &e.ReservationID, &e.UserID, &e.FlightID, &e.CategoryID, &e.BasePrice, &e.Surcharge)
    if err == sql.ErrNoRows {
        return nil, ErrNotPending
    }
    if err != nil {
        return nil, err
    }
    return &e, nil
}

// InsertPurchaseTx creates the purchase row. totalAmount is the
// pre-tax subtotal; tax is stored on the invoice only.
func (r *PurchaseRepo) InsertPurchaseTx(ctx context.Context, tx *sql.Tx, reservationID uint64, deliveryMethod string, totalAmount float64) (uint64, error) {
    const q = `INSERT INTO purchases (reservation_id, purchased_at, delivery_method, total_amount)
               VALUES (?, NOW(), ?, ?)`
    res, err := tx.ExecContext(ctx, q, reservationID, deliveryMethod, totalAmount)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    return uint64(id), err
}

// InsertInvoiceTx creates the invoice row with a NULL ticket
// reference. The ticket does not exist yet; BackfillTicketTx links it
// once it does.
func (r *PurchaseRepo) InsertInvoiceTx(ctx context.Context, tx *sql.Tx, userID, purchaseID, cardID uint64, totalAmount, taxAmount float64) (uint64, error) {
    const q = `INSERT INTO invoices (user_id, purchase_id, card_id, ticket_id, issued_at, total_amount, tax_amount)
               VALUES (?, ?, ?, NULL, NOW(), ?, ?)`
    res, err := tx.ExecContext(ctx, q, userID, purchaseID, cardID, totalAmount, taxAmount)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    return uint64(id), err
}

// InsertTicketTx creates the ticket row with its assigned seat.
func (r *PurchaseRepo) InsertTicketTx(ctx context.Context, tx *sql.Tx, invoiceID, purchaseID, userID uint64, seatNumber string) (uint64, error) {
    const q = `INSERT INTO tickets (invoice_id, purchase_id, user_id, seat_number)
               VALUES (?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, invoiceID, purchaseID, userID, seatNumber)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    return uint64(id), err
}

// BackfillTicketTx completes the invoice<->ticket link after the
// ticket insert.
func (r *PurchaseRepo) BackfillTicketTx(ctx context.Context, tx *sql.Tx, ticketID, invoiceID uint64) error {
    const q = `UPDATE invoices SET ticket_id = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, ticketID, invoiceID)
    return err
}

// CheckoutSummary is the pricing preview served before a purchase.
type CheckoutSummary struct {
    ReservationID     uint64  `json:"reservation_id"`
    ReservationStatus string  `json:"reservation_status"`
    UserID            uint64  `json:"user_id"`
    FlightID          uint64  `json:"flight_id"`
    DepartureAt       string  `json:"departure_at"`
    ArrivalAt         string  `json:"arrival_at"`
    FlightType        string  `json:"flight_type"`
    FlightStatus      string  `json:"flight_status"`
    SeatsAvailable    int64   `json:"seats_available"`
    OriginCity        string  `json:"origin_city"`
    OriginIata        string  `json:"origin_iata"`
    DestinationCity   string  `json:"destination_city"`
    DestinationIata   string  `json:"destination_iata"`
    AirlineName       string  `json:"airline_name"`
    AirlineCode       string  `json:"airline_code"`
    CategoryName      string  `json:"category_name"`
    BasePrice         float64 `json:"base_price"`
    Surcharge         float64 `json:"category_surcharge"`
}

// GetCheckout loads the data needed to preview a purchase. Returns
// sql.ErrNoRows when the reservation does not exist.
func (r *PurchaseRepo) GetCheckout(ctx context.Context, reservationID uint64) (*CheckoutSummary, error) {
    const q = `SELECT r.id, r.status, r.user_id, r.flight_id,
                      v.departure_at, v.arrival_at, v.flight_type, v.status, v.seats_available,
                      ori.name, ori.iata_code,
                      dest.name, dest.iata_code,
                      a.name, a.code,
                      c.name, v.price, c.surcharge
               FROM reservations r
               JOIN flights v ON v.id = r.flight_id
               JOIN cities ori ON ori.id = v.origin_city_id
               JOIN cities dest ON dest.id = v.destination_city_id
               JOIN airlines a ON a.id = v.airline_id
               JOIN seat_categories c ON c.id = r.category_id
               WHERE r.id = ?`
    var s CheckoutSummary
    err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
        &s.ReservationID, &s.ReservationStatus, &s.UserID, &s.FlightID,
        &s.DepartureAt, &s.ArrivalAt, &s.FlightType, &s.FlightStatus, &s.SeatsAvailable,
        &s.OriginCity, &s.OriginIata,
        &s.DestinationCity, &s.DestinationIata,
        &s.AirlineName, &s.AirlineCode,
        &s.CategoryName, &s.BasePrice, &s.Surcharge)
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// GetIDByReservation returns the purchase id created for a
// reservation, or sql.ErrNoRows when none exists.
func (r *PurchaseRepo) GetIDByReservation(ctx context.Context, reservationID uint64) (uint64, error) {
    const q = `SELECT id FROM purchases WHERE reservation_id = ? LIMIT 1`
    var id uint64
    err := r.db.QueryRowContext(ctx, q, reservationID).Scan(&id)
    return id, err
}

// NotificationDetail carries everything the notification dispatcher
// needs to build the confirmation message without querying the
// database again.
type NotificationDetail struct {
    PurchaseID     uint64
    InvoiceID      uint64
    TicketID       uint64
    ReservationID  uint64
    UserID         uint64
    CustomerName   string
    CustomerEmail  string
    DeliveryMethod string
    SeatNumber     string
    TotalAmount    float64
    TaxAmount      float64
    AirlineName    string
    AirlineCode    string
    OriginCity     string
    OriginIata     string
    DestCity       string
    DestIata       string
    DepartureAt    string
    ArrivalAt      string
    FlightStatus   string
    PurchasedAt    string
}

// GetNotificationDetail joins purchase, invoice, ticket, user and
// flight data for one purchase. Returns sql.ErrNoRows when the
// purchase does not exist.
func (r *PurchaseRepo) GetNotificationDetail(ctx context.Context, purchaseID uint64) (*NotificationDetail, error) {
    const q = `SELECT p.id, f.id, t.id, r.id, u.id,
                      CONCAT(u.first_name, ' ', u.last_name), u.email,
                      p.delivery_method, t.seat_number,
                      f.total_amount, f.tax_amount,
                      a.name, a.code,
                      ori.name, ori.iata_code,
                      dest.name, dest.iata_code,
                      v.departure_at, v.arrival_at, v.status,
                      p.purchased_at
               FROM purchases p
               JOIN invoices f ON f.purchase_id = p.id
               JOIN tickets t ON t.purchase_id = p.id
               JOIN reservations r ON r.id = p.reservation_id
               JOIN users u ON u.id = r.user_id
               JOIN flights v ON v.id = r.flight_id
               JOIN cities ori ON ori.id = v.origin_city_id
               JOIN cities dest ON dest.id = v.destination_city_id
               JOIN airlines a ON a.id = v.airline_id
               WHERE p.id = ?
               LIMIT 1`
    var d NotificationDetail
    err := r.db.QueryRowContext(ctx, q, purchaseID).Scan(
        &d.PurchaseID, &d.InvoiceID, &d.TicketID, &d.ReservationID, &d.UserID,
        &d.CustomerName, &d.CustomerEmail,
        &d.DeliveryMethod, &d.SeatNumber,
        &d.TotalAmount, &d.TaxAmount,
        &d.AirlineName, &d.AirlineCode,
        &d.OriginCity, &d.OriginIata,
        &d.DestCity, &d.DestIata,
        &d.DepartureAt, &d.ArrivalAt, &d.FlightStatus,
        &d.PurchasedAt)
    if err != nil {
        return nil, err
    }
    return &d, nil
}
