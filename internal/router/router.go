package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/handler"
	"github.com/aereosky/flight-booking-api/internal/middleware"
	"github.com/aereosky/flight-booking-api/internal/model"
)

// Handlers gathers every handler the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Flights      *handler.FlightHandler
	Reservations *handler.ReservationHandler
	Purchases    *handler.PurchaseHandler
	Cards        *handler.CardHandler
	Catalog      *handler.CatalogHandler
}

// Register registers every route of the API on the provided Echo
// instance. Public browse endpoints carry no auth; the optional cache
// middleware wraps them. Everything touching reservations, purchases
// or cards requires a valid token, and flight mutations plus the admin
// reservation listing additionally require the ADMIN role.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Accounts.
	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)

	// Public browse endpoints, cacheable.
	pub := e.Group("")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("/vuelos", h.Flights.Search)
	pub.GET("/vuelos/tarifas", h.Flights.SearchByFares)
	pub.GET("/vuelos/horarios", h.Flights.SearchBySchedules)
	pub.GET("/vuelo/:id", h.Flights.Get)
	pub.GET("/vuelo/:id/info", h.Flights.Info)
	pub.GET("/vuelo/:id/detalle", h.Flights.GetBookable)
	pub.GET("/ciudades", h.Catalog.Cities)
	pub.GET("/aerolineas", h.Catalog.Airlines)
	pub.GET("/categorias-asiento", h.Catalog.SeatCategories)

	// Authenticated endpoints (any role).
	auth := e.Group("")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))

	auth.GET("/v1/me", h.Auth.Me)

	auth.POST("/reservas", h.Reservations.Create)
	auth.GET("/reservas", h.Reservations.ListMine)
	auth.GET("/reservas/usuario/:id", h.Reservations.ListByUser)
	auth.GET("/usuarios/:id/reservas", h.Reservations.ListByUser)
	auth.PATCH("/reservas/:id/cancelar", h.Reservations.Cancel)
	auth.DELETE("/reservas/:id", h.Reservations.Delete)

	auth.POST("/compras", h.Purchases.Create)
	auth.GET("/checkout/:id_reserva", h.Purchases.Checkout)
	auth.GET("/compra/:id_reserva", h.Purchases.LookupByReservation)
	auth.POST("/correo-compra/:id_compra", h.Purchases.ResendMail)

	auth.GET("/tarjetas/:id_usuario", h.Cards.List)
	auth.POST("/tarjetas", h.Cards.Create)
	auth.DELETE("/tarjetas/:id_tarjeta", h.Cards.Delete)

	// Administrative endpoints.
	admin := e.Group("")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.GET("/reservas/admin/all", h.Reservations.ListAll)
	admin.PUT("/reservas/:id", h.Reservations.SetState)
	admin.POST("/create-vuelo", h.Flights.Create)
	admin.PUT("/update-vuelo/:id", h.Flights.Update)
	admin.DELETE("/delete-vuelo/:id", h.Flights.Delete)
	admin.PATCH("/vuelo/:id/asientos", h.Flights.AdjustSeats)
}
