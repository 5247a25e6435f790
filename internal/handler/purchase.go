package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/model"
	"github.com/aereosky/flight-booking-api/internal/queue"
	"github.com/aereosky/flight-booking-api/internal/repository"
	queue_publisher "github.com/aereosky/flight-booking-api/internal/service"
	"github.com/aereosky/flight-booking-api/internal/utils"
)

// seatCount bounds the assigned seat designators: row A, seats 1..30.
const seatCount = 30

// PurchaseHandler orchestrates purchase finalization: one transaction
// turns a PENDING reservation into a CONFIRMED one with a purchase, an
// invoice and a ticket, then publishes the completion event after the
// commit. The three rows exist together or not at all; the event is
// fire-and-forget and its failure never undoes the purchase.
type PurchaseHandler struct {
	Purchases    *repository.PurchaseRepo
	Cards        *repository.CardRepo
	Reservations *repository.ReservationRepo
	AMQPURL      string
}

func NewPurchaseHandler(p *repository.PurchaseRepo, cards *repository.CardRepo, r *repository.ReservationRepo, amqpURL string) *PurchaseHandler {
	return &PurchaseHandler{Purchases: p, Cards: cards, Reservations: r, AMQPURL: amqpURL}
}

type paymentInstrument struct {
	UseExisting  bool   `json:"use_existing"`
	CardID       uint64 `json:"card_id"`
	CardNumber   string `json:"card_number"`
	ExpiresAt    string `json:"expires_at"`
	SecurityCode string `json:"security_code"`
	Brand        string `json:"brand"`
}

type createPurchaseReq struct {
	ReservationID  uint64            `json:"reservation_id"`
	DeliveryMethod string            `json:"delivery_method"`
	Payment        paymentInstrument `json:"payment_instrument"`
}

// Create handles POST /compras. The whole sequence (lock reservation,
// resolve card, price, insert purchase/invoice/ticket, backfill the
// invoice's ticket id, confirm the reservation) runs in one
// transaction. The reservation lock is the serialization point: a
// concurrent purchase of the same reservation blocks on it and then
// finds the state CONFIRMED.
func (h *PurchaseHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	if !model.ValidDeliveryMethod(req.DeliveryMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid delivery method"})
	}

	ctx := c.Request().Context()
	tx, err := h.Purchases.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Missing and already-processed reservations answer alike: clients
	// only learn the reservation cannot be purchased.
	elig, err := h.Purchases.LockEligibleTx(ctx, tx, req.ReservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not valid or already processed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock reservation"})
	}
	if elig.UserID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	cardID, status, msg := h.resolveCard(c, tx, elig.UserID, req.Payment)
	if status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}

	subtotal := utils.Round2(elig.BasePrice + elig.Surcharge)
	tax := utils.ComputeTax(subtotal)

	purchaseID, err := h.Purchases.InsertPurchaseTx(ctx, tx, elig.ReservationID, req.DeliveryMethod, subtotal)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create purchase"})
	}
	invoiceID, err := h.Purchases.InsertInvoiceTx(ctx, tx, elig.UserID, purchaseID, cardID, subtotal, tax)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create invoice"})
	}
	seat := fmt.Sprintf("A%d", rand.Intn(seatCount)+1)
	ticketID, err := h.Purchases.InsertTicketTx(ctx, tx, invoiceID, purchaseID, elig.UserID, seat)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket"})
	}
	if err := h.Purchases.BackfillTicketTx(ctx, tx, ticketID, invoiceID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link ticket"})
	}
	if err := h.Reservations.SetStatusTx(ctx, tx, elig.ReservationID, model.ReservationConfirmed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm reservation"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	queued := h.publishCompleted(c, purchaseID)

	return c.JSON(http.StatusCreated, echo.Map{
		"purchase_id":     purchaseID,
		"invoice_id":      invoiceID,
		"ticket_id":       ticketID,
		"reservation_id":  elig.ReservationID,
		"seat_number":     seat,
		"subtotal":        subtotal,
		"tax":             tax,
		"total":           utils.Round2(subtotal + tax),
		"delivery_method": req.DeliveryMethod,
		"notification":    echo.Map{"queued": queued},
	})
}

// resolveCard returns the card id to bill inside the purchase
// transaction. An existing card must belong to the reservation's owner;
// a new card is normalized and inserted in the same transaction so a
// later failure rolls it back too. On error it returns a non-zero HTTP
// status and a client message.
func (h *PurchaseHandler) resolveCard(c echo.Context, tx *sql.Tx, ownerID uint64, p paymentInstrument) (uint64, int, string) {
	ctx := c.Request().Context()
	if p.UseExisting {
		if p.CardID == 0 {
			return 0, http.StatusBadRequest, "card_id is required"
		}
		if err := h.Cards.VerifyOwnershipTx(ctx, tx, p.CardID, ownerID); err != nil {
			if errors.Is(err, repository.ErrForbidden) {
				return 0, http.StatusForbidden, "card does not belong to user"
			}
			return 0, http.StatusInternalServerError, "failed to verify card"
		}
		return p.CardID, 0, ""
	}
	if p.CardNumber == "" || p.ExpiresAt == "" || p.SecurityCode == "" {
		return 0, http.StatusBadRequest, "card_number, expires_at and security_code are required"
	}
	card := &model.CreditCard{
		UserID:       ownerID,
		Number:       p.CardNumber,
		ExpiresAt:    p.ExpiresAt,
		SecurityCode: p.SecurityCode,
		Brand:        p.Brand,
	}
	if err := h.Cards.CreateTx(ctx, tx, card); err != nil {
		if errors.Is(err, repository.ErrInvalidCard) {
			return 0, http.StatusBadRequest, "invalid card number"
		}
		return 0, http.StatusInternalServerError, "failed to store card"
	}
	return card.ID, 0, ""
}

// publishCompleted loads the committed purchase and publishes the
// completion event. Returns false when the event could not be queued;
// the purchase stands either way.
func (h *PurchaseHandler) publishCompleted(c echo.Context, purchaseID uint64) bool {
	ctx := c.Request().Context()
	d, err := h.Purchases.GetNotificationDetail(ctx, purchaseID)
	if err != nil {
		log.Printf("purchase %d: load notification detail failed: %v", purchaseID, err)
		return false
	}
	ev := queue.PurchaseCompletedEvent{
		PurchaseID:     d.PurchaseID,
		InvoiceID:      d.InvoiceID,
		TicketID:       d.TicketID,
		ReservationID:  d.ReservationID,
		UserID:         d.UserID,
		CustomerName:   d.CustomerName,
		CustomerEmail:  d.CustomerEmail,
		DeliveryMethod: d.DeliveryMethod,
		SeatNumber:     d.SeatNumber,
		TotalAmount:    d.TotalAmount,
		TaxAmount:      d.TaxAmount,
		AirlineName:    d.AirlineName,
		AirlineCode:    d.AirlineCode,
		OriginCity:     d.OriginCity,
		OriginIata:     d.OriginIata,
		DestCity:       d.DestCity,
		DestIata:       d.DestIata,
		DepartureAt:    d.DepartureAt,
		ArrivalAt:      d.ArrivalAt,
		PurchasedAt:    d.PurchasedAt,
	}
	if err := queue_publisher.PublishPurchaseCompleted(ctx, h.AMQPURL, ev); err != nil {
		log.Printf("purchase %d: publish completion event failed: %v", purchaseID, err)
		return false
	}
	return true
}

// Checkout handles GET /checkout/:id_reserva, the pricing preview shown
// before finalizing a purchase.
func (h *PurchaseHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id_reserva")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	s, err := h.Purchases.GetCheckout(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load checkout"})
	}
	if s.UserID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	subtotal := utils.Round2(s.BasePrice + s.Surcharge)
	tax := utils.ComputeTax(subtotal)
	return c.JSON(http.StatusOK, echo.Map{
		"reservation": s,
		"pricing": echo.Map{
			"subtotal": subtotal,
			"tax":      tax,
			"total":    utils.Round2(subtotal + tax),
		},
	})
}

// LookupByReservation handles GET /compra/:id_reserva and returns the
// purchase created for a reservation.
func (h *PurchaseHandler) LookupByReservation(c echo.Context) error {
	id, err := pathID(c, "id_reserva")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	pid, err := h.Purchases.GetIDByReservation(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load purchase"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": id, "purchase_id": pid})
}

// ResendMail handles POST /correo-compra/:id_compra: it re-publishes
// the completion event for an existing purchase so the consumer sends
// the confirmation email again.
func (h *PurchaseHandler) ResendMail(c echo.Context) error {
	id, err := pathID(c, "id_compra")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	if _, err := h.Purchases.GetNotificationDetail(c.Request().Context(), id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load purchase"})
	}
	queued := h.publishCompleted(c, id)
	status := http.StatusOK
	if !queued {
		status = http.StatusBadGateway
	}
	return c.JSON(status, echo.Map{"purchase_id": id, "notification": echo.Map{"queued": queued}})
}
