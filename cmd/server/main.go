package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-booking/internal/config"
	"github.com/iliyamo/facility-booking/internal/database"
	"github.com/iliyamo/facility-booking/internal/handler"
	"github.com/iliyamo/facility-booking/internal/middleware"
	"github.com/iliyamo/facility-booking/internal/notify"
	"github.com/iliyamo/facility-booking/internal/queue"
	"github.com/iliyamo/facility-booking/internal/repository"
	"github.com/iliyamo/facility-booking/internal/router"
	"github.com/iliyamo/facility-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	bookingRepo := repository.NewBookingRepo(db)
	historyRepo := repository.NewHistoryRepo(db)
	quotaRepo := repository.NewQuotaRepo(db)
	facilityRepo := repository.NewFacilityRepo(db)
	userRepo := repository.NewUserRepo(db)
	clientRepo := repository.NewClientRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// Notifications degrade to a dry-run logger without an API key.
	var notifier service.Notifier = notify.LogMailer{}
	if cfg.MailAPIKey != "" {
		notifier = notify.NewMailer(cfg.MailAPIKey, cfg.MailFromName, cfg.MailFrom)
	}

	publisher := queue.NewPublisher(cfg.AMQPURL)

	// Booking engine.
	resolver := service.NewQuotaResolver(quotaRepo)
	bookingSvc := service.NewBookingService(
		bookingRepo, historyRepo, resolver,
		facilityRepo, userRepo, auditRepo,
		notifier, publisher,
	)
	sweeper := service.NewSweeper(bookingRepo, historyRepo, userRepo, facilityRepo, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx, cfg.SweepEvery)

	// The consumer drains booking.events into the local event log.  It
	// reconnects on its own; a missing broker only disables eventing.
	go func() {
		if err := queue.StartEventConsumer(cfg.AMQPURL); err != nil {
			log.Printf("event consumer: %v", err)
		}
	}()

	// HTTP surface.
	e := echo.New()
	e.HideBanner = true

	var limiter echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	} else {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	router.RegisterRoutes(e, router.Deps{
		Auth:       handler.NewAuthHandler(clientRepo, userRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
		Bookings:   handler.NewBookingHandler(bookingSvc, sweeper, userRepo),
		Facilities: handler.NewFacilityHandler(facilityRepo),
		Users:      handler.NewUserHandler(userRepo),
		Quotas:     handler.NewQuotaHandler(quotaRepo, resolver),
		JWTSecret:  cfg.JWTSecret,
		RateLimit:  limiter,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
