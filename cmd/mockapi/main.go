package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"storefront-client/internal/config"
	"storefront-client/internal/logger"
	"storefront-client/internal/mockapi"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("mockapi", cfg)

	db := mockapi.InitDB(cfg.MockAPI.DatabasePath)
	srv := mockapi.NewServer(&cfg.MockAPI, db, log)

	serverAddr := cfg.MockAPI.Host + ":" + cfg.MockAPI.Port

	log.Info("starting mock storefront API", "addr", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, shutting down")

	if err := srv.Shutdown(); err != nil {
		log.Error("HTTP server shutdown error", "err", err)
		os.Exit(1)
	}
}
