package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/adapters/ops"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/bootstrap"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/config"
)

const service = "moderation-sweeper"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, service, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		if err := ops.Serve(":"+cfg.OpsPort, app.Metrics.Handler()); err != nil {
			app.Log.Error("ops server stopped", "error", err)
		}
	}()

	sweep := func() {
		sweepCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		start := time.Now()
		count, err := app.Intake.Sweep(sweepCtx)
		if err != nil {
			app.Log.Error("intake sweep failed", "error", err)
			return
		}
		app.Metrics.ObserveSweep(count, time.Since(start))
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, sweep); err != nil {
		log.Fatalf("invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}

	app.Log.Info("sweeper started", "schedule", cfg.SweepSchedule)
	sweep()
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
}
