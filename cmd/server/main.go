package main // Entry point package

import (
	"context" // Context for the background sweeper
	"log"     // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/flight-ticket-booking/internal/booking"    // fare table
	"github.com/iliyamo/flight-ticket-booking/internal/config"     // Internal config loader
	"github.com/iliyamo/flight-ticket-booking/internal/database"   // MySQL connection
	"github.com/iliyamo/flight-ticket-booking/internal/handler"    // HTTP handlers
	"github.com/iliyamo/flight-ticket-booking/internal/middleware" // cache + rate limit middleware
	"github.com/iliyamo/flight-ticket-booking/internal/payment"    // WayForPay adapter
	"github.com/iliyamo/flight-ticket-booking/internal/queue"      // order.paid consumer
	"github.com/iliyamo/flight-ticket-booking/internal/repository" // data access layer
	"github.com/iliyamo/flight-ticket-booking/internal/router"     // route registration
	"github.com/iliyamo/flight-ticket-booking/internal/worker"     // hold-window expiry sweeper
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: rate limiting and response caching degrade to
	// pass-through when the client is nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories share the one *sql.DB pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	airplanes := repository.NewAirplaneRepo(db)
	flights := repository.NewFlightRepo(db)
	tickets := repository.NewTicketRepo(db)
	baskets := repository.NewBasketRepo(db)
	orders := repository.NewOrderRepo(db)
	facilities := repository.NewFacilityRepo(db)

	gateway := payment.NewClient(payment.Config{
		MerchantAccount: cfg.WayForPayMerchant,
		MerchantDomain:  cfg.WayForPayDomain,
		SecretKey:       cfg.WayForPaySecret,
		APIURL:          cfg.WayForPayAPIURL,
		ServiceURL:      cfg.WayForPayServiceURL,
	})
	fares := booking.FareTable{
		EconomyCents:       cfg.EconomyFareCents,
		BusinessCents:      cfg.BusinessFareCents,
		SeatSurchargeCents: cfg.SeatSurchargeCents,
	}

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	flightHandler := handler.NewFlightHandler(flights, airplanes, tickets, facilities)
	basketHandler := handler.NewBasketHandler(flights, tickets, baskets, airplanes)
	orderHandler := handler.NewOrderHandler(orders, tickets, baskets, flights, airplanes, facilities, users, gateway, fares)
	paymentHandler := handler.NewPaymentHandler(orders, tickets, gateway)
	adminHandler := handler.NewAdminHandler(airplanes, flights, facilities)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	// The response cache goes only on the public flight routes; cached
	// replies skip the handler chain, so it must never sit in front of
	// authenticated endpoints.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, flightHandler, cache)
	router.RegisterCustomer(e, basketHandler, orderHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)
	router.RegisterPayment(e, paymentHandler)

	// Background hold-window sweeper.
	sweeper := worker.NewExpirySweeper(flights, tickets, baskets,
		cfg.HoldWindow, worker.ExpiryPolicy(cfg.ExpiryPolicy), cfg.SweepInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Start(ctx)

	// Background order.paid consumer; reconnects on broker failures.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
