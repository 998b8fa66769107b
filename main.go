package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"ad-aid-platform/app"
	"ad-aid-platform/config"
)

func main() {
	flagSet := pflag.NewFlagSet("ad-aid-platform", pflag.ExitOnError)
	envFile := flagSet.String("env-file", ".env", "dotenv file loaded outside production")
	configFile := flagSet.String("config", "", "optional YAML config file")
	seed := flagSet.Bool("seed", false, "insert the initial template catalogue when no templates exist")
	flagSet.Parse(os.Args[1:])

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	application, err := app.Initialize(ctx, cfg, app.Options{Seed: *seed})
	if err != nil {
		log.Fatal(err)
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s (store=%s, storage=%s)", cfg.Addr(), cfg.Store.Driver, cfg.Storage.Driver)
		log.Printf("Upload workflows: POST http://localhost:%s/api/workflows/upload", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Graceful shutdown failed: %v", err)
	}
}
