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

	"github.com/joho/godotenv"

	"fam450/app"
	"fam450/internal"
	"fam450/internal/config"
	"fam450/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level), os.Stderr)
	tables := app.NewTableService(appConfig.Tables.Workers, logger)

	// Warm up: the default grid must reproduce both FAM 450 tables before serving
	if _, err := tables.Tables(context.Background(), appConfig.Tables.OVR, appConfig.Tables.Grid); err != nil {
		log.Fatalf("Failed to generate default tables: %v", err)
	}

	server := ui.NewApp(ui.Config{
		Port: appConfig.Server.Port,
		OVR:  appConfig.Tables.OVR,
		Grid: appConfig.Tables.Grid,
	}, tables, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
