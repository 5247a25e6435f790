package model

// Static reference data used by flight search and checkout joins.

// City is a row of the `cities` table.
type City struct {
    ID       uint64 `json:"id"`
    Name     string `json:"name"`
    IataCode string `json:"iata_code"`
    Country  string `json:"country"`
}

// Airline is a row of the `airlines` table.
type Airline struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
    Code string `json:"code"`
}

// SeatCategory is a row of the `seat_categories` table.  Surcharge is
// added to the flight's base fare when pricing a reservation; the
// range fields describe which cabin rows the category covers.
type SeatCategory struct {
    ID         uint64  `json:"id"`
    Name       string  `json:"name"`
    RangeStart int     `json:"range_start"`
    RangeEnd   int     `json:"range_end"`
    Surcharge  float64 `json:"surcharge"`
}
