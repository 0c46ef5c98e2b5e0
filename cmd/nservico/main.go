package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nservico/nservico/internal/app"
	"github.com/nservico/nservico/internal/export"
	"github.com/nservico/nservico/internal/ledger"
	"github.com/nservico/nservico/internal/roster"
	"github.com/nservico/nservico/internal/settings"
	"github.com/nservico/nservico/internal/store"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	for _, dir := range []string{cfg.CfgDir, cfg.DataDir, cfg.ResultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create data directory", slog.String("dir", dir), slog.Any("error", err))
			os.Exit(1)
		}
	}

	aliases, err := ledger.LoadAliases(cfg.AliasesPath())
	if err != nil {
		logger.Error("load header aliases", slog.Any("error", err))
		os.Exit(1)
	}

	rosterStore := store.New(cfg.RosterPath(), roster.Columns)
	ledgerStore := store.New(cfg.LedgerPath(), ledger.Columns)
	settingsStore := settings.NewStore(cfg.SettingsPath())

	rosterHandler := roster.NewHandler(logger, roster.NewService(rosterStore))
	ledgerHandler := ledger.NewHandler(logger, ledger.NewService(ledgerStore, aliases))
	exportHandler := export.NewHandler(logger, export.NewService(ledgerStore, export.Config{
		ResultsDir: cfg.ResultsDir,
		URLPrefix:  cfg.ResultsURLPrefix(),
	}))
	settingsHandler := settings.NewHandler(logger, settingsStore)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		RosterHandler:   rosterHandler,
		LedgerHandler:   ledgerHandler,
		ExportHandler:   exportHandler,
		SettingsHandler: settingsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("prefix", cfg.BasePrefix))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
