package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/config"
	"github.com/minbok/shuttle-reservation/internal/database"
	"github.com/minbok/shuttle-reservation/internal/handler"
	"github.com/minbok/shuttle-reservation/internal/obs"
	"github.com/minbok/shuttle-reservation/internal/queue"
	"github.com/minbok/shuttle-reservation/internal/repository"
	"github.com/minbok/shuttle-reservation/internal/reward"
	"github.com/minbok/shuttle-reservation/internal/router"
	"github.com/minbok/shuttle-reservation/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	shutdownTracer := obs.InitTracer("shuttle-reservation", cfg.Env)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, cfg.MigrationsURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unreachable; cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	reservationRepo := repository.NewReservationRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	routeRepo := repository.NewRouteRepo(db)
	userRepo := repository.NewUserRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	boardingRepo := repository.NewBoardingRepo(db)
	rewardRepo := repository.NewRewardRepo(db)

	notifier := service.AMQPNotifier{}
	clk := clock.System{}

	reservationSvc := service.NewReservationService(reservationRepo, scheduleRepo, notifier, clk)
	boardingSvc := service.NewBoardingService(boardingRepo, notifier, clk)
	rewardEngine := reward.NewEngine(boardingRepo, rewardRepo, clk, cfg.RewardStreakDays)

	reservationHandler := handler.NewReservationHandler(reservationSvc)
	boardingHandler := handler.NewBoardingHandler(boardingSvc)
	browseHandler := handler.NewBrowseHandler(routeRepo, scheduleRepo, reservationRepo)
	catalogHandler := handler.NewCatalogHandler(routeRepo, scheduleRepo)
	directoryHandler := handler.NewDirectoryHandler(companyRepo, userRepo)
	rewardHandler := handler.NewRewardHandler(rewardRepo, rewardEngine)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterPublic(e, browseHandler, cacheCfg, rdb)
	router.RegisterRider(e, reservationHandler, rewardHandler, userRepo, cfg.JWTSecret, rlCfg, rdb)
	router.RegisterOperations(e, catalogHandler, boardingHandler, rewardHandler, userRepo, cfg.JWTSecret)
	router.RegisterDirectory(e, directoryHandler, userRepo, cfg.JWTSecret)

	// Drains reservation.changed events and evicts stale browse cache
	// entries; reconnects on broker outages.
	go queue.StartInvalidationConsumer(rdb, cacheCfg.Prefix)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
