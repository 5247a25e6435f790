package repository

import (
    "context"
    "database/sql"

    "github.com/aereosky/flight-booking-api/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. State
// transitions with inventory side effects (create, cancel) run inside
// caller-owned transactions via the *Tx methods; the caller must
// commit or roll back. The raw SetState update deliberately bypasses
// both the row lock and the seat ledger.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a PENDING reservation within the transaction and
// populates the generated ID and timestamps on the record. The caller
// is expected to have reserved a seat on the flight in the same
// transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
    const q = `INSERT INTO reservations (user_id, flight_id, category_id, reserved_at, status)
               VALUES (?, ?, ?, NOW(), 'PENDING')`
    result, err := tx.ExecContext(ctx, q, res.UserID, res.FlightID, res.CategoryID)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    // Query back the full row so the response carries DB-side defaults.
    const sel = `SELECT id, user_id, flight_id, category_id, reserved_at, status
                 FROM reservations WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, res.ID).Scan(
        &res.ID, &res.UserID, &res.FlightID, &res.CategoryID, &res.ReservedAt, &res.Status)
}

// LockTx locks the reservation row with SELECT ... FOR UPDATE and
// returns its flight id, owner and current state. Two concurrent
// transitions on the same reservation serialize here; the loser
// re-reads the state written by the winner. Returns sql.ErrNoRows when
// the reservation does not exist.
func (r *ReservationRepo) LockTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (flightID, userID uint64, status string, err error) {
    const q = `SELECT flight_id, user_id, status FROM reservations WHERE id = ? FOR UPDATE`
    err = tx.QueryRowContext(ctx, q, reservationID).Scan(&flightID, &userID, &status)
    return flightID, userID, status, err
}

// SetStatusTx updates the reservation state inside the transaction.
func (r *ReservationRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, reservationID uint64, status string) error {
    const q = `UPDATE reservations SET status = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, status, reservationID)
    return err
}

// SetStatus performs the administrative raw state write. No row lock,
// no seat accounting: a transition to or from CANCELLED through this
// path leaves seats_available untouched, exactly like the original
// admin override. Returns sql.ErrNoRows when the reservation is
// missing.
func (r *ReservationRepo) SetStatus(ctx context.Context, reservationID uint64, status string) error {
    const q = `UPDATE reservations SET status = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, status, reservationID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish missing rows from no-op writes of the same state.
        var one int
        err = r.db.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, reservationID).Scan(&one)
        if err != nil {
            return err
        }
    }
    return nil
}

// ReservationDetail is a reservation joined with flight, airline,
// route and category data, as returned by the listing endpoints.
type ReservationDetail struct {
    ID                uint64   `json:"id"`
    UserID            uint64   `json:"user_id"`
    FlightID          uint64   `json:"flight_id"`
    CategoryID        uint64   `json:"category_id"`
    ReservedAt        string   `json:"reserved_at"`
    Status            string   `json:"status"`
    DepartureAt       string   `json:"departure_at"`
    ArrivalAt         string   `json:"arrival_at"`
    FlightType        string   `json:"flight_type"`
    FlightStatus      string   `json:"flight_status"`
    SeatsAvailable    int64    `json:"seats_available"`
    BasePrice         float64  `json:"base_price"`
    AirlineName       string   `json:"airline_name"`
    AirlineCode       string   `json:"airline_code"`
    OriginCity        string   `json:"origin_city"`
    OriginIata        string   `json:"origin_iata"`
    DestinationCity   string   `json:"destination_city"`
    DestinationIata   string   `json:"destination_iata"`
    CategoryName      *string  `json:"category_name"`
    CategorySurcharge *float64 `json:"category_surcharge"`
}

const reservationSelect = `SELECT r.id, r.user_id, r.flight_id, r.category_id, r.reserved_at, r.status,
       v.departure_at, v.arrival_at, v.flight_type, v.status, v.seats_available, v.price,
       a.name, a.code,
       ori.name, ori.iata_code,
       dest.name, dest.iata_code,
       c.name, c.surcharge
FROM reservations r
JOIN flights v ON v.id = r.flight_id
JOIN airlines a ON a.id = v.airline_id
JOIN cities ori ON ori.id = v.origin_city_id
JOIN cities dest ON dest.id = v.destination_city_id
LEFT JOIN seat_categories c ON c.id = r.category_id`

// ListByUser returns all reservations of a user, newest first, with
// flight and category details joined in.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
    q := reservationSelect + `
WHERE r.user_id = ?
ORDER BY r.id DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]ReservationDetail, 0)
    for rows.Next() {
        var d ReservationDetail
        var catName sql.NullString
        var catSurcharge sql.NullFloat64
        if err := rows.Scan(
            &d.ID, &d.UserID, &d.FlightID, &d.CategoryID, &d.ReservedAt, &d.Status,
            &d.DepartureAt, &d.ArrivalAt, &d.FlightType, &d.FlightStatus, &d.SeatsAvailable, &d.BasePrice,
            &d.AirlineName, &d.AirlineCode,
            &d.OriginCity, &d.OriginIata,
            &d.DestinationCity, &d.DestinationIata,
            &catName, &catSurcharge,
        ); err != nil {
            return nil, err
        }
        if catName.Valid {
            n := catName.String
            d.CategoryName = &n
        }
        if catSurcharge.Valid {
            s := catSurcharge.Float64
            d.CategorySurcharge = &s
        }
        details = append(details, d)
    }
    return details, rows.Err()
}

// AdminReservation is the compact row returned by the admin listing.
type AdminReservation struct {
    ID           uint64 `json:"id"`
    UserID       uint64 `json:"user_id"`
    CustomerName string `json:"customer_name"`
    ReservedAt   string `json:"reserved_at"`
    Status       string `json:"status"`
    DepartureAt  string `json:"departure_at"`
    AirlineName  string `json:"airline_name"`
    OriginIata   string `json:"origin_iata"`
    DestIata     string `json:"destination_iata"`
}

// ListAll returns every reservation with customer and route info,
// newest first. Admin only.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]AdminReservation, error) {
    const q = `SELECT r.id, r.user_id,
                      CONCAT(u.first_name, ' ', u.last_name),
                      r.reserved_at, r.status,
                      v.departure_at, a.name,
                      ori.iata_code, dest.iata_code
               FROM reservations r
               JOIN flights v ON v.id = r.flight_id
               JOIN airlines a ON a.id = v.airline_id
               JOIN cities ori ON ori.id = v.origin_city_id
               JOIN cities dest ON dest.id = v.destination_city_id
               JOIN users u ON u.id = r.user_id
               ORDER BY r.id DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]AdminReservation, 0)
    for rows.Next() {
        var a AdminReservation
        if err := rows.Scan(
            &a.ID, &a.UserID, &a.CustomerName, &a.ReservedAt, &a.Status,
            &a.DepartureAt, &a.AirlineName, &a.OriginIata, &a.DestIata,
        ); err != nil {
            return nil, err
        }
        items = append(items, a)
    }
    return items, rows.Err()
}
