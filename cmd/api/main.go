package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendorledger/config"
	httpHandler "vendorledger/internal/adapter/http/handler"
	"vendorledger/internal/adapter/remote/sheets"
	fileStorage "vendorledger/internal/adapter/storage/file"
	"vendorledger/internal/core/ports"
	"vendorledger/internal/service"
	"vendorledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, logger.FileConfig{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("data_dir", cfg.Data.Dir).
		Msg("Starting Vendor Ledger")

	// Initialize local snapshot store
	store, err := fileStorage.New(cfg.Data.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data directory")
	}

	// Initialize change log and ledger
	changes, err := service.NewChangeLog(store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load pending changes")
	}
	ledger, err := service.NewLedgerService(store, changes, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load local cache")
	}
	log.Info().Int("records", ledger.TotalRecords()).Int("pending", changes.Len()).Msg("local state loaded")

	// Initialize remote store and sync coordinator
	remote := sheets.NewClient(cfg.CredentialsPath(), cfg.Sheets.SpreadsheetID, log)
	syncSvc, err := service.NewSyncService(ledger, changes, remote, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load sync settings")
	}

	// Background sync worker, cancelled at shutdown
	syncCtx, stopSync := context.WithCancel(context.Background())
	go syncSvc.Run(syncCtx)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Ledger:         ledger,
		Sync:           syncSvc,
		HealthCheckers: []ports.HealthChecker{store, remote},
		Logger:         log,
		Mode:           cfg.Server.Mode,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopSync()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
