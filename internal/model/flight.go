package model

import "time"

// Flight lifecycle states.  A flight is only bookable while it is
// SCHEDULED; CANCELLED flights are excluded from booking and from the
// public detail endpoint.  The seats_available column is the shared
// inventory counter and is only ever mutated while the flight row is
// locked with SELECT ... FOR UPDATE.
const (
    FlightScheduled = "SCHEDULED"
    FlightAirborne  = "AIRBORNE"
    FlightLanded    = "LANDED"
    FlightCancelled = "CANCELLED"
)

// Flight mirrors the `flights` table.
//
// Fields:
//  ID                – primary key identifier.
//  AirlineID         – operating airline.
//  AircraftID        – assigned aircraft.
//  OriginCityID      – departure city.
//  DestinationCityID – arrival city.
//  DepartureAt       – scheduled departure (UTC).
//  ArrivalAt         – scheduled arrival (UTC).
//  FlightType        – e.g. "Direct" or "Connection".
//  SeatsAvailable    – remaining seat inventory.
//  Price             – base fare before category surcharge.
//  Status            – lifecycle state (see constants above).
type Flight struct {
    ID                uint64    `json:"id"`
    AirlineID         uint64    `json:"airline_id"`
    AircraftID        uint64    `json:"aircraft_id"`
    OriginCityID      uint64    `json:"origin_city_id"`
    DestinationCityID uint64    `json:"destination_city_id"`
    DepartureAt       time.Time `json:"departure_at"`
    ArrivalAt         time.Time `json:"arrival_at"`
    FlightType        string    `json:"flight_type"`
    SeatsAvailable    int64     `json:"seats_available"`
    Price             float64   `json:"price"`
    Status            string    `json:"status"`
}
