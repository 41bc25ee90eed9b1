package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/vespanova/booking-api/internal/availability"
	"github.com/vespanova/booking-api/internal/config"
	"github.com/vespanova/booking-api/internal/database"
	"github.com/vespanova/booking-api/internal/handler"
	"github.com/vespanova/booking-api/internal/queue"
	"github.com/vespanova/booking-api/internal/ratelimit"
	"github.com/vespanova/booking-api/internal/repository"
	"github.com/vespanova/booking-api/internal/router"
)

func main() {
	// Optional .env for local development; production uses real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database migrate failed: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting falls back to in-memory, availability cache disabled")
	}

	bookings := repository.NewBookingRepo(db)
	outbox := repository.NewOutboxRepo(db)
	emails := repository.NewEmailLogRepo(db)
	consents := repository.NewConsentRepo(db)
	reports := repository.NewReportRepo(db)

	var store ratelimit.Store
	if rdb != nil {
		store = ratelimit.NewRedisStore(rdb)
	} else {
		store = ratelimit.NewMemoryStore()
	}
	bookingLimiter := ratelimit.New(store, config.LoadRateLimitConfig("BOOKING", 3))
	consentLimiter := ratelimit.New(store, config.LoadRateLimitConfig("CONSENT", 10))

	cache := availability.NewCache(rdb, cfg.AvailabilityCacheTTL)

	// Background notification pipeline: the drainer moves committed
	// outbox rows to the broker, the consumer delivers them to the
	// automation webhook. Neither ever blocks a request transaction.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.NewDrainer(db, outbox, cfg.OutboxInterval, 0).Run(ctx)
	go queue.NewConsumer(bookings, emails, cfg.WebhookURL).Run(ctx)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewBookingHandler(bookings, outbox, cache, bookingLimiter, cfg.FleetSize),
		handler.NewAvailabilityHandler(bookings, cache, cfg.FleetSize),
		handler.NewConsentHandler(consents, consentLimiter),
	)
	router.RegisterAdmin(e, cfg.JWTSecret, cfg.AdminEmails,
		handler.NewAdminBookingHandler(bookings, outbox, emails, cache, cfg.FleetSize),
		handler.NewAvailabilityHandler(bookings, cache, cfg.FleetSize),
		handler.NewReportHandler(reports, bookings),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, fleet=%d)", addr, cfg.Env, cfg.FleetSize)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
