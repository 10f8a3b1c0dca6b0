// rewardjob runs one reward issuance sweep and exits.  It is meant to
// be scheduled (cron or a k8s CronJob); the sweep is idempotent, so an
// interrupted run can simply be rerun.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/config"
	"github.com/minbok/shuttle-reservation/internal/database"
	"github.com/minbok/shuttle-reservation/internal/repository"
	"github.com/minbok/shuttle-reservation/internal/reward"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	engine := reward.NewEngine(
		repository.NewBoardingRepo(db),
		repository.NewRewardRepo(db),
		clock.System{},
		cfg.RewardStreakDays,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("sweep interrupted after %d coupons (scanned %d riders): %v",
			report.Issued, report.UsersScanned, err)
	}
	log.Printf("sweep done: scanned %d riders, issued %d coupons (threshold %d days)",
		report.UsersScanned, report.Issued, report.Threshold)
}
