package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/model"
	"github.com/aereosky/flight-booking-api/internal/repository"
)

// FlightHandler serves flight search, detail and the administrative
// flight CRUD. Deleting a flight is logical (status CANCELLED) so
// existing reservations keep a valid foreign key.
type FlightHandler struct {
	Flights *repository.FlightRepo
}

func NewFlightHandler(f *repository.FlightRepo) *FlightHandler {
	return &FlightHandler{Flights: f}
}

func queryID(c echo.Context, name string) uint64 {
	n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return n
}

// Search handles GET /vuelos. Filters: origen, destino, aerolinea,
// estado, fecha (YYYY-MM-DD). Ordering comes either from ?ordenar= or
// from the route alias (tarifas, horarios).
func (h *FlightHandler) Search(c echo.Context) error {
	return h.searchOrdered(c, c.QueryParam("ordenar"))
}

// SearchByFares handles GET /vuelos/tarifas (cheapest first).
func (h *FlightHandler) SearchByFares(c echo.Context) error {
	return h.searchOrdered(c, "tarifas")
}

// SearchBySchedules handles GET /vuelos/horarios (earliest departure first).
func (h *FlightHandler) SearchBySchedules(c echo.Context) error {
	return h.searchOrdered(c, "horarios")
}

func (h *FlightHandler) searchOrdered(c echo.Context, orderBy string) error {
	f := repository.SearchFilter{
		OriginCityID:      queryID(c, "origen"),
		DestinationCityID: queryID(c, "destino"),
		AirlineID:         queryID(c, "aerolinea"),
		Status:            c.QueryParam("estado"),
		DepartureDate:     c.QueryParam("fecha"),
		OrderBy:           orderBy,
	}
	items, err := h.Flights.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search flights"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /vuelo/:id: any flight, cancelled included.
func (h *FlightHandler) Get(c echo.Context) error {
	return h.getFlight(c, false)
}

// GetBookable handles GET /vuelo/:id/detalle: the public detail view,
// which excludes cancelled flights.
func (h *FlightHandler) GetBookable(c echo.Context) error {
	return h.getFlight(c, true)
}

func (h *FlightHandler) getFlight(c echo.Context, onlyBookable bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	d, err := h.Flights.GetByID(c.Request().Context(), id, onlyBookable)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
	}
	return c.JSON(http.StatusOK, d)
}

// Info handles GET /vuelo/:id/info, the availability summary.
func (h *FlightHandler) Info(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	a, err := h.Flights.GetAvailability(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
	}
	return c.JSON(http.StatusOK, a)
}

type flightReq struct {
	AirlineID         uint64  `json:"airline_id"`
	AircraftID        uint64  `json:"aircraft_id"`
	OriginCityID      uint64  `json:"origin_city_id"`
	DestinationCityID uint64  `json:"destination_city_id"`
	DepartureAt       string  `json:"departure_at"`
	ArrivalAt         string  `json:"arrival_at"`
	FlightType        string  `json:"flight_type"`
	SeatsAvailable    int64   `json:"seats_available"`
	Price             float64 `json:"price"`
	Status            string  `json:"status"`
}

// validate checks the business rules shared by create and update:
// distinct cities, chronological times, non-negative seats and price.
func (r *flightReq) validate() (model.Flight, string) {
	if r.AirlineID == 0 || r.AircraftID == 0 || r.OriginCityID == 0 || r.DestinationCityID == 0 {
		return model.Flight{}, "airline_id, aircraft_id and both cities are required"
	}
	if r.OriginCityID == r.DestinationCityID {
		return model.Flight{}, "origin and destination must differ"
	}
	dep, err := time.Parse(time.RFC3339, r.DepartureAt)
	if err != nil {
		return model.Flight{}, "invalid departure_at"
	}
	arr, err := time.Parse(time.RFC3339, r.ArrivalAt)
	if err != nil {
		return model.Flight{}, "invalid arrival_at"
	}
	if !arr.After(dep) {
		return model.Flight{}, "arrival must be after departure"
	}
	if r.SeatsAvailable < 0 || r.Price < 0 {
		return model.Flight{}, "seats and price must be non-negative"
	}
	if r.Status != "" && !validFlightStatus(r.Status) {
		return model.Flight{}, "invalid status"
	}
	return model.Flight{
		AirlineID:         r.AirlineID,
		AircraftID:        r.AircraftID,
		OriginCityID:      r.OriginCityID,
		DestinationCityID: r.DestinationCityID,
		DepartureAt:       dep,
		ArrivalAt:         arr,
		FlightType:        r.FlightType,
		SeatsAvailable:    r.SeatsAvailable,
		Price:             r.Price,
		Status:            r.Status,
	}, ""
}

func validFlightStatus(s string) bool {
	switch s {
	case model.FlightScheduled, model.FlightAirborne, model.FlightLanded, model.FlightCancelled:
		return true
	}
	return false
}

// Create handles POST /create-vuelo (admin).
func (h *FlightHandler) Create(c echo.Context) error {
	var req flightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	f, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Flights.Create(c.Request().Context(), &f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create flight"})
	}
	return c.JSON(http.StatusCreated, f)
}

// Update handles PUT /update-vuelo/:id (admin).
func (h *FlightHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	var req flightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	f, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	f.ID = id
	if f.Status == "" {
		f.Status = model.FlightScheduled
	}
	if err := h.Flights.Update(c.Request().Context(), &f); err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update flight"})
	}
	return c.JSON(http.StatusOK, f)
}

// Delete handles DELETE /delete-vuelo/:id (admin): a logical cancel.
func (h *FlightHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	changed, err := h.Flights.CancelLogical(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel flight"})
	}
	if !changed {
		return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.FlightCancelled, "changed": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.FlightCancelled, "changed": true})
}

type adjustSeatsReq struct {
	Delta int64 `json:"delta"`
}

// AdjustSeats handles PATCH /vuelo/:id/asientos (admin): a stock
// correction outside the booking flow. A positive delta takes seats and
// fails with 409 when not enough remain; a negative delta returns them.
func (h *FlightHandler) AdjustSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	var req adjustSeatsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delta must be non-zero"})
	}
	n, err := h.Flights.AdjustSeats(c.Request().Context(), req.Delta, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to adjust seats"})
	}
	if n == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient seats or flight unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "delta": req.Delta})
}
