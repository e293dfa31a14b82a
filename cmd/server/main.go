package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pokedeck/internal/api"
	"github.com/youruser/pokedeck/internal/cards"
	"github.com/youruser/pokedeck/internal/config"
	"github.com/youruser/pokedeck/internal/i18n"
	"github.com/youruser/pokedeck/internal/logger"
	"github.com/youruser/pokedeck/internal/observability"
	"github.com/youruser/pokedeck/internal/session"
	"github.com/youruser/pokedeck/internal/storage"
	"github.com/youruser/pokedeck/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	shutdownTracing := observability.InitTracing(ctx, log, cfg.OTel, cfg.Mode)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	// Card data is best-effort: an empty catalog still serves decks.
	local := cards.NewLocal(nil)
	loaded, err := cards.LoadCardsFromDataDir(cfg.DataDir)
	if err != nil {
		log.Warn("Failed to load card CSVs", "dir", cfg.DataDir, "error", err)
	} else {
		local.Replace(loaded)
		log.Info("Cards loaded", "count", len(loaded), "dir", cfg.DataDir)
	}

	repo, closeRepo, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open deck store: %w", err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Warn("Closing deck store failed", "error", err)
		}
	}()

	msgs, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	httpClient := util.NewHTTPClient(cfg.CatalogTimeout)
	sessions := session.NewManager(session.Options{
		Repo:     repo,
		Fetcher:  cards.NewClient(cfg.CatalogBaseURL(), httpClient),
		Messages: msgs,
		Log:      log,
		PageSize: cfg.PageSize,
		Debounce: cfg.SearchDebounce,
		IdleTTL:  cfg.SessionIdleTTL,
	})
	defer sessions.Close()

	if cfg.Mode == "prod" || cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := api.NewHandler(api.Deps{
		Catalog:    local,
		Decks:      repo,
		Sessions:   sessions,
		Messages:   msgs,
		Locale:     cfg.Locale,
		HTTPClient: httpClient,
		Log:        log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(h, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", "http://localhost:"+cfg.Port, "store", cfg.DeckStore, "catalog", cfg.CatalogBaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
