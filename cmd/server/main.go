package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/dualstrike/internal/config"
	"github.com/DoyleJ11/dualstrike/internal/httpapi"
	"github.com/DoyleJ11/dualstrike/internal/hub"
	"github.com/DoyleJ11/dualstrike/internal/notify"
	"github.com/DoyleJ11/dualstrike/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		mk, err := store.OpenMasterKey(cfg.Store.DataDir, cfg.Store.MasterKeyPassphrase, logger)
		if err != nil {
			return nil, err
		}
		return store.NewFile(cfg.Store.DataDir, mk, logger)
	case config.DriverPostgres:
		return store.NewPostgres(cfg.DSN(), !cfg.IsProduction(), logger)
	default:
		return store.NewMemory(), nil
	}
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if !cfg.DiscordEnabled() {
		return notify.Log{Logger: logger.Named("alerts")}, nil
	}
	session, err := notify.NewDiscordSession()
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return notify.NewDiscord(session, cfg.Discord.WebhookID, cfg.Discord.WebhookToken, cfg.Discord.NotifyInterval, logger), nil
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close()

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	h := hub.NewHub(context.Background(), hub.Options{
		Store:          st,
		Notifier:       notifier,
		Logger:         logger,
		PersistTimeout: cfg.Store.PersistTimeout,
	})

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr: cfg.App.Addr,
		Handler: httpapi.SetupRoutes(h, httpapi.RouterOptions{
			Lister:         st,
			Logger:         logger,
			OriginPatterns: cfg.App.OriginPatterns,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("discord", cfg.DiscordEnabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), h.Shutdown(shutdownCtx))
	})
	return g.Wait()
}
