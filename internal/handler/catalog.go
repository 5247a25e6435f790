package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/repository"
)

// CatalogHandler serves the read-only reference lookups used by flight
// search forms and checkout. The routes sit behind the response cache.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
}

func NewCatalogHandler(cat *repository.CatalogRepo) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

// Cities handles GET /ciudades.
func (h *CatalogHandler) Cities(c echo.Context) error {
	items, err := h.Catalog.ListCities(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list cities"})
	}
	return c.JSON(http.StatusOK, items)
}

// Airlines handles GET /aerolineas.
func (h *CatalogHandler) Airlines(c echo.Context) error {
	items, err := h.Catalog.ListAirlines(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list airlines"})
	}
	return c.JSON(http.StatusOK, items)
}

// SeatCategories handles GET /categorias-asiento.
func (h *CatalogHandler) SeatCategories(c echo.Context) error {
	items, err := h.Catalog.ListSeatCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list seat categories"})
	}
	return c.JSON(http.StatusOK, items)
}
