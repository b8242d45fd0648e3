package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/logging"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/seed"
)

func main() {
	_ = godotenv.Load()

	defaults := seed.DefaultOptions()
	out := flag.String("out", envOr("SEED_FILE", "seed.json"), "fixture path")
	rulesPath := flag.String("practice", os.Getenv("PRACTICE_FILE"), "practice rules TOML, embedded defaults when empty")
	zone := flag.String("tz", envOr("PRACTICE_TIMEZONE", clock.DefaultZone), "practice timezone")
	seedValue := flag.Uint64("seed", defaults.Seed, "random seed")
	patientCount := flag.Int("patients", defaults.Patients, "number of patients")
	pastDays := flag.Int("past-days", defaults.PastDays, "days of history to book")
	futureDays := flag.Int("future-days", defaults.FutureDays, "days ahead to book")
	density := flag.Int("density", defaults.Density, "percentage of working hours booked")
	flag.Parse()

	logger, err := logging.New(envOr("APP_ENV", "dev"), envOr("LOG_LEVEL", "info"))
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	clk, err := clock.Load(*zone)
	if err != nil {
		logger.Fatal("load timezone", zap.Error(err))
	}

	rules := practice.Default()
	if *rulesPath != "" {
		if rules, err = practice.LoadFile(*rulesPath); err != nil {
			logger.Fatal("load practice rules", zap.Error(err))
		}
	}

	fx, err := seed.Generate(rules, clk, seed.Options{
		Seed:       *seedValue,
		Patients:   *patientCount,
		PastDays:   *pastDays,
		FutureDays: *futureDays,
		Density:    *density,
	})
	if err != nil {
		logger.Fatal("generate fixture", zap.Error(err))
	}
	if err := seed.Save(*out, fx); err != nil {
		logger.Fatal("save fixture", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.String("path", *out),
		zap.Int("patients", len(fx.Patients)),
		zap.Int("appointments", len(fx.Appointments)),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
