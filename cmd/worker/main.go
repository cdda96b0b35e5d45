package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/adapters/ops"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/bootstrap"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/config"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

const service = "moderation-worker"

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

	app.Log.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.Subscribe(ctx, func(handlerCtx context.Context, env domain.Envelope) error {
		handleCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		app.Metrics.StartEnvelope()
		start := time.Now()
		handleErr := app.Pipeline.HandleEnvelope(handleCtx, env)
		app.Metrics.FinishEnvelope(service, string(env.Kind), time.Since(start), handleErr)
		return handleErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
