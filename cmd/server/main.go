package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aereosky/flight-booking-api/internal/config"
	"github.com/aereosky/flight-booking-api/internal/database"
	"github.com/aereosky/flight-booking-api/internal/handler"
	"github.com/aereosky/flight-booking-api/internal/middleware"
	"github.com/aereosky/flight-booking-api/internal/queue"
	"github.com/aereosky/flight-booking-api/internal/repository"
	"github.com/aereosky/flight-booking-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Background consumer: logs completed purchases and sends the
	// confirmation email. It reconnects on broker failures forever.
	mailer := queue.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if mailer == nil {
		log.Println("smtp not configured; purchase emails disabled")
	}
	go func() {
		if err := queue.StartPurchaseConsumer(cfg.AMQPURL, mailer); err != nil {
			log.Printf("purchase consumer stopped: %v", err)
		}
	}()

	flights := repository.NewFlightRepo(db)
	reservations := repository.NewReservationRepo(db)
	purchases := repository.NewPurchaseRepo(db)
	cards := repository.NewCardRepo(db)
	users := repository.NewUserRepo(db)
	catalog := repository.NewCatalogRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users),
		Flights:      handler.NewFlightHandler(flights),
		Reservations: handler.NewReservationHandler(reservations, flights),
		Purchases:    handler.NewPurchaseHandler(purchases, cards, reservations, cfg.AMQPURL),
		Cards:        handler.NewCardHandler(cards),
		Catalog:      handler.NewCatalogHandler(catalog),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}
	router.Register(e, h, cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
