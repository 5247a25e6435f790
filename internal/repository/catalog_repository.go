package repository

import (
    "context"
    "database/sql"

    "github.com/aereosky/flight-booking-api/internal/model"
)

// CatalogRepo serves the read-only reference tables backing flight
// search and checkout: cities, airlines and seat categories.
type CatalogRepo struct{ db *sql.DB }

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListCities returns all cities ordered by country, then name.
func (r *CatalogRepo) ListCities(ctx context.Context) ([]model.City, error) {
    const q = `SELECT id, name, iata_code, country FROM cities ORDER BY country ASC, name ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    cities := make([]model.City, 0)
    for rows.Next() {
        var c model.City
        if err := rows.Scan(&c.ID, &c.Name, &c.IataCode, &c.Country); err != nil {
            return nil, err
        }
        cities = append(cities, c)
    }
    return cities, rows.Err()
}

// ListAirlines returns all airlines ordered by name.
func (r *CatalogRepo) ListAirlines(ctx context.Context) ([]model.Airline, error) {
    const q = `SELECT id, name, code FROM airlines ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    airlines := make([]model.Airline, 0)
    for rows.Next() {
        var a model.Airline
        if err := rows.Scan(&a.ID, &a.Name, &a.Code); err != nil {
            return nil, err
        }
        airlines = append(airlines, a)
    }
    return airlines, rows.Err()
}

// ListSeatCategories returns all seat categories ordered by id.
func (r *CatalogRepo) ListSeatCategories(ctx context.Context) ([]model.SeatCategory, error) {
    const q = `SELECT id, name, range_start, range_end, surcharge FROM seat_categories ORDER BY id ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    cats := make([]model.SeatCategory, 0)
    for rows.Next() {
        var c model.SeatCategory
        if err := rows.Scan(&c.ID, &c.Name, &c.RangeStart, &c.RangeEnd, &c.Surcharge); err != nil {
            return nil, err
        }
        cats = append(cats, c)
    }
    return cats, rows.Err()
}
