package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/model"
	"github.com/aereosky/flight-booking-api/internal/repository"
	"github.com/aereosky/flight-booking-api/internal/utils"
)

// CardHandler serves stored payment cards. Numbers are normalized on
// write and only ever returned masked.
type CardHandler struct {
	Cards *repository.CardRepo
}

func NewCardHandler(cards *repository.CardRepo) *CardHandler {
	return &CardHandler{Cards: cards}
}

// List handles GET /tarjetas/:id_usuario. Customers can only list
// their own cards.
func (h *CardHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	target, err := pathID(c, "id_usuario")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if target != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	cards, err := h.Cards.ListByUser(c.Request().Context(), target)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list cards"})
	}
	return c.JSON(http.StatusOK, cards)
}

type createCardReq struct {
	CardNumber   string `json:"card_number"`
	ExpiresAt    string `json:"expires_at"`
	SecurityCode string `json:"security_code"`
	Brand        string `json:"brand"`
}

// Create handles POST /tarjetas: normalizes the number, autodetects the
// brand when absent and stores the card for the authenticated user.
func (h *CardHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createCardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.CardNumber == "" || req.ExpiresAt == "" || req.SecurityCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "card_number, expires_at and security_code are required"})
	}
	card := &model.CreditCard{
		UserID:       uid,
		Number:       req.CardNumber,
		ExpiresAt:    req.ExpiresAt,
		SecurityCode: req.SecurityCode,
		Brand:        req.Brand,
	}
	if err := h.Cards.Create(c.Request().Context(), card); err != nil {
		if errors.Is(err, repository.ErrInvalidCard) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid card number"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store card"})
	}
	return c.JSON(http.StatusCreated, repository.MaskedCard{
		ID:           card.ID,
		MaskedNumber: utils.MaskCardNumber(card.Number),
		ExpiresAt:    card.ExpiresAt,
		Brand:        card.Brand,
	})
}

// Delete handles DELETE /tarjetas/:id_tarjeta.
func (h *CardHandler) Delete(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id_tarjeta")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid card id"})
	}
	if err := h.Cards.Delete(c.Request().Context(), id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "card not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete card"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "deleted": true})
}
