package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/model"
	"github.com/aereosky/flight-booking-api/internal/repository"
)

// ReservationHandler serves the reservation state machine: creation
// (which takes a seat from the flight's inventory), cancellation (which
// returns it), the administrative raw state write and the listings.
// Every transition with an inventory side effect runs in a single
// transaction so the reservation state and the seat counter can never
// diverge.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Flights      *repository.FlightRepo
}

func NewReservationHandler(r *repository.ReservationRepo, f *repository.FlightRepo) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Flights: f}
}

type createReservationReq struct {
	UserID     uint64 `json:"user_id"` // honored only for ADMIN callers
	FlightID   uint64 `json:"flight_id"`
	CategoryID uint64 `json:"category_id"`
}

// Create handles POST /reservas. It reserves one seat on the flight and
// inserts a PENDING reservation in the same transaction: the flight row
// lock taken by ReserveSeatTx serializes concurrent bookings, so the
// last seat can only go to one of them.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.FlightID == 0 || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_id and category_id are required"})
	}
	// Admins can book on behalf of another user.
	if req.UserID != 0 && req.UserID != uid {
		if !isAdmin(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		uid = req.UserID
	}

	ctx := c.Request().Context()
	tx, err := h.Flights.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Flights.ReserveSeatTx(ctx, tx, req.FlightID); err != nil {
		switch {
		case errors.Is(err, repository.ErrFlightNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		case errors.Is(err, repository.ErrFlightUnavailable):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight not available for booking"})
		case errors.Is(err, repository.ErrNoSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reserve seat"})
	}

	res := &model.Reservation{UserID: uid, FlightID: req.FlightID, CategoryID: req.CategoryID}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles PATCH /reservas/:id/cancelar. It locks the reservation,
// requires PENDING, marks it CANCELLED and returns the seat to the
// flight, all in one transaction. A non-PENDING reservation yields 409
// with the current state so clients can tell "already confirmed" from
// "already cancelled".
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	flightID, ownerID, status, err := h.Reservations.LockTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock reservation"})
	}
	if ownerID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if status != model.ReservationPending {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "reservation is not pending",
			"status": status,
		})
	}

	if err := h.Reservations.SetStatusTx(ctx, tx, id, model.ReservationCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	if err := h.Flights.ReleaseSeatTx(ctx, tx, flightID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release seat"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"id":     id,
		"status": model.ReservationCancelled,
	})
}

type setStateReq struct {
	Estado string `json:"estado"`
}

// SetState handles PUT /reservas/:id. It is the administrative raw
// state write: the new state is stored as-is, with no row lock and no
// seat accounting. Moving a reservation in or out of CANCELLED through
// this endpoint leaves seats_available untouched.
func (h *ReservationHandler) SetState(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req setStateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidReservationState(req.Estado) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
	}

	if err := h.Reservations.SetStatus(c.Request().Context(), id, req.Estado); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Estado})
}

// Delete handles DELETE /reservas/:id, the legacy cancellation alias.
// It cancels a PENDING reservation but does NOT release the seat; the
// original endpoint predates the seat ledger and callers were migrated
// to PATCH /reservas/:id/cancelar, which does both.
func (h *ReservationHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, ownerID, status, err := h.Reservations.LockTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock reservation"})
	}
	if ownerID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if status != model.ReservationPending {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "reservation is not pending",
			"status": status,
		})
	}

	if err := h.Reservations.SetStatusTx(ctx, tx, id, model.ReservationCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.ReservationCancelled})
}

// ListMine handles GET /reservas. Admins may pass ?usuario= to list
// another user's reservations; everyone else gets their own.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if q := c.QueryParam("usuario"); q != "" {
		n, err := strconv.ParseUint(q, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid usuario filter"})
		}
		if n != uid && !isAdmin(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		uid = n
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list reservations"})
	}
	return c.JSON(http.StatusOK, items)
}

// ListByUser handles GET /reservas/usuario/:id and its alias
// GET /usuarios/:id/reservas. Customers can only list themselves.
func (h *ReservationHandler) ListByUser(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	target, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if target != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), target)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list reservations"})
	}
	return c.JSON(http.StatusOK, items)
}

// ListAll handles GET /reservas/admin/all. Routing guards it with the
// ADMIN role.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	items, err := h.Reservations.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list reservations"})
	}
	return c.JSON(http.StatusOK, items)
}
