package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/aereosky/flight-booking-api/internal/model"
)

// FlightRepo provides flight queries plus the seat inventory ledger.
// The ledger methods (LockForBookingTx, ReserveSeatTx, ReleaseSeatTx)
// operate on the seats_available counter and must run inside a
// transaction that holds the flight row lock; the row lock is the only
// mutual-exclusion primitive in the system, so a check-then-update
// outside of it would reintroduce the oversell race.
type FlightRepo struct {
    db *sql.DB
}

// NewFlightRepo returns a FlightRepo bound to the given database.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *FlightRepo) DB() *sql.DB { return r.db }

// ReserveSeatTx takes one seat from the flight's inventory. It locks
// the flight row with SELECT ... FOR UPDATE, validates that the flight
// is bookable and has seats left, then decrements the counter, all
// within the caller's transaction. Holding the row lock across the
// check and the decrement is what serializes concurrent bookings on
// the same flight: a second caller blocks on the lock and re-reads a
// fresh seat count once the first transaction finishes. Cancelled
// flights are filtered in the query itself, so a cancelled flight
// reports ErrFlightNotFound just like a missing one.
func (r *FlightRepo) ReserveSeatTx(ctx context.Context, tx *sql.Tx, flightID uint64) error {
    const sel = `SELECT seats_available, status
                 FROM flights
                 WHERE id = ? AND status <> 'CANCELLED'
                 FOR UPDATE`
    var seats int64
    var status string
    err := tx.QueryRowContext(ctx, sel, flightID).Scan(&seats, &status)
    if err == sql.ErrNoRows {
        return ErrFlightNotFound
    }
    if err != nil {
        return err
    }
    if status != model.FlightScheduled {
        return ErrFlightUnavailable
    }
    if seats <= 0 {
        return ErrNoSeats
    }
    const upd = `UPDATE flights SET seats_available = seats_available - 1 WHERE id = ?`
    _, err = tx.ExecContext(ctx, upd, flightID)
    return err
}

// ReleaseSeatTx returns one seat to the flight's inventory. Invoked
// only for flights known to have had a seat reserved, so the increment
// is unconditional.
func (r *FlightRepo) ReleaseSeatTx(ctx context.Context, tx *sql.Tx, flightID uint64) error {
    const q = `UPDATE flights SET seats_available = seats_available + 1 WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, flightID)
    return err
}

// AdjustSeats applies a stock delta outside of the booking flow
// (administrative correction). Positive deltas reserve seats and only
// succeed while enough inventory remains on a non-cancelled flight;
// negative deltas return seats. Returns the number of affected rows so
// the handler can distinguish "no stock" from success.
func (r *FlightRepo) AdjustSeats(ctx context.Context, delta int64, flightID uint64) (int64, error) {
    var res sql.Result
    var err error
    if delta > 0 {
        const q = `UPDATE flights
                   SET seats_available = seats_available - ?
                   WHERE id = ? AND seats_available >= ? AND status <> 'CANCELLED'`
        res, err = r.db.ExecContext(ctx, q, delta, flightID, delta)
    } else {
        const q = `UPDATE flights
                   SET seats_available = seats_available - ?
                   WHERE id = ? AND status <> 'CANCELLED'`
        res, err = r.db.ExecContext(ctx, q, delta, flightID)
    }
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// Create inserts a flight and returns the stored row.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
    const q = `INSERT INTO flights
               (airline_id, aircraft_id, origin_city_id, destination_city_id,
                departure_at, arrival_at, flight_type, seats_available, price, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    status := f.Status
    if status == "" {
        status = model.FlightScheduled
    }
    res, err := r.db.ExecContext(ctx, q,
        f.AirlineID, f.AircraftID, f.OriginCityID, f.DestinationCityID,
        f.DepartureAt, f.ArrivalAt, f.FlightType, f.SeatsAvailable, f.Price, status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    f.ID = uint64(id)
    f.Status = status
    return nil
}

// Update overwrites all mutable flight columns. Returns
// ErrFlightNotFound when the id does not exist.
func (r *FlightRepo) Update(ctx context.Context, f *model.Flight) error {
    const q = `UPDATE flights
               SET airline_id = ?, aircraft_id = ?, origin_city_id = ?, destination_city_id = ?,
                   departure_at = ?, arrival_at = ?, flight_type = ?,
                   seats_available = ?, price = ?, status = ?
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q,
        f.AirlineID, f.AircraftID, f.OriginCityID, f.DestinationCityID,
        f.DepartureAt, f.ArrivalAt, f.FlightType, f.SeatsAvailable, f.Price, f.Status, f.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrFlightNotFound
    }
    return nil
}

// CancelLogical marks a flight CANCELLED. It reports (false, nil) when
// the flight exists but was already cancelled and ErrFlightNotFound
// when it does not exist at all.
func (r *FlightRepo) CancelLogical(ctx context.Context, flightID uint64) (bool, error) {
    const q = `UPDATE flights SET status = 'CANCELLED' WHERE id = ? AND status <> 'CANCELLED'`
    res, err := r.db.ExecContext(ctx, q, flightID)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n > 0 {
        return true, nil
    }
    var one int
    err = r.db.QueryRowContext(ctx, `SELECT 1 FROM flights WHERE id = ?`, flightID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, ErrFlightNotFound
    }
    return false, err
}

// FlightDetail is the row shape returned by search and detail queries:
// the flight plus airline and route names joined in.
type FlightDetail struct {
    model.Flight
    AirlineName     string `json:"airline_name"`
    AirlineCode     string `json:"airline_code"`
    OriginCity      string `json:"origin_city"`
    OriginIata      string `json:"origin_iata"`
    DestinationCity string `json:"destination_city"`
    DestinationIata string `json:"destination_iata"`
}

// SearchFilter narrows the flight listing. Zero values mean "no
// filter". OrderBy accepts "tarifas" (cheapest first) and "horarios"
// (earliest departure first); anything else sorts newest first.
type SearchFilter struct {
    OriginCityID      uint64
    DestinationCityID uint64
    AirlineID         uint64
    Status            string
    DepartureDate     string // YYYY-MM-DD
    OrderBy           string
}

const flightSelect = `SELECT v.id, v.airline_id, v.aircraft_id, v.origin_city_id, v.destination_city_id,
       v.departure_at, v.arrival_at, v.flight_type, v.seats_available, v.price, v.status,
       a.name, a.code,
       co.name, co.iata_code,
       cd.name, cd.iata_code
FROM flights v
LEFT JOIN airlines a ON a.id = v.airline_id
LEFT JOIN cities co ON co.id = v.origin_city_id
LEFT JOIN cities cd ON cd.id = v.destination_city_id`

func scanFlightDetail(row interface{ Scan(...interface{}) error }, d *FlightDetail) error {
    var airlineName, airlineCode sql.NullString
    var originCity, originIata, destCity, destIata sql.NullString
    err := row.Scan(
        &d.ID, &d.AirlineID, &d.AircraftID, &d.OriginCityID, &d.DestinationCityID,
        &d.DepartureAt, &d.ArrivalAt, &d.FlightType, &d.SeatsAvailable, &d.Price, &d.Status,
        &airlineName, &airlineCode,
        &originCity, &originIata,
        &destCity, &destIata,
    )
    if err != nil {
        return err
    }
    d.AirlineName = airlineName.String
    d.AirlineCode = airlineCode.String
    d.OriginCity = originCity.String
    d.OriginIata = originIata.String
    d.DestinationCity = destCity.String
    d.DestinationIata = destIata.String
    return nil
}

// Search lists flights matching the filter.
func (r *FlightRepo) Search(ctx context.Context, f SearchFilter) ([]FlightDetail, error) {
    var where []string
    var args []interface{}
    if f.OriginCityID != 0 {
        where = append(where, "v.origin_city_id = ?")
        args = append(args, f.OriginCityID)
    }
    if f.DestinationCityID != 0 {
        where = append(where, "v.destination_city_id = ?")
        args = append(args, f.DestinationCityID)
    }
    if f.AirlineID != 0 {
        where = append(where, "v.airline_id = ?")
        args = append(args, f.AirlineID)
    }
    if f.Status != "" {
        where = append(where, "v.status = ?")
        args = append(args, f.Status)
    }
    if f.DepartureDate != "" {
        where = append(where, "DATE(v.departure_at) = ?")
        args = append(args, f.DepartureDate)
    }

    order := "ORDER BY v.id DESC"
    switch f.OrderBy {
    case "tarifas":
        order = "ORDER BY v.price ASC"
    case "horarios":
        order = "ORDER BY v.departure_at ASC"
    }

    q := flightSelect
    if len(where) > 0 {
        q += "\nWHERE " + strings.Join(where, " AND ")
    }
    q += "\n" + order

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]FlightDetail, 0)
    for rows.Next() {
        var d FlightDetail
        if err := scanFlightDetail(rows, &d); err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    return details, rows.Err()
}

// GetByID returns a single flight with airline and route names. When
// onlyBookable is set, cancelled flights are excluded (public detail
// view).
func (r *FlightRepo) GetByID(ctx context.Context, flightID uint64, onlyBookable bool) (*FlightDetail, error) {
    q := flightSelect + "\nWHERE v.id = ?"
    if onlyBookable {
        q += " AND v.status <> 'CANCELLED'"
    }
    var d FlightDetail
    err := scanFlightDetail(r.db.QueryRowContext(ctx, q, flightID), &d)
    if err == sql.ErrNoRows {
        return nil, ErrFlightNotFound
    }
    if err != nil {
        return nil, err
    }
    return &d, nil
}

// Availability summarizes a flight's bookability for GET /vuelo/:id/info.
type Availability struct {
    FlightID        uint64  `json:"flight_id"`
    Status          string  `json:"status"`
    SeatsAvailable  int64   `json:"seats_available"`
    DurationMinutes float64 `json:"duration_minutes"`
    Available       bool    `json:"available"`
}

// GetAvailability returns the availability summary for a flight.
func (r *FlightRepo) GetAvailability(ctx context.Context, flightID uint64) (*Availability, error) {
    const q = `SELECT id, status, seats_available,
                      TIMESTAMPDIFF(MINUTE, departure_at, arrival_at)
               FROM flights WHERE id = ?`
    var a Availability
    err := r.db.QueryRowContext(ctx, q, flightID).Scan(
        &a.FlightID, &a.Status, &a.SeatsAvailable, &a.DurationMinutes)
    if err == sql.ErrNoRows {
        return nil, ErrFlightNotFound
    }
    if err != nil {
        return nil, err
    }
    a.Available = a.SeatsAvailable > 0
    return &a, nil
}
