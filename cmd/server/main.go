// chat-notes server: a chat-based personal note assistant behind an HTTP
// event endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kuitang/chat-notes/internal/bot"
	"github.com/kuitang/chat-notes/internal/config"
	"github.com/kuitang/chat-notes/internal/notes"
	"github.com/kuitang/chat-notes/internal/obs"
	"github.com/kuitang/chat-notes/internal/ratelimit"
	"github.com/kuitang/chat-notes/internal/storage"
	"github.com/kuitang/chat-notes/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		listenAddr = flag.String("addr", "", "listen address (overrides config)")
	)
	flag.Parse()

	obs.Init()
	logger := obs.Pkg("main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	if err := run(cfg); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := obs.Pkg("main")

	backend, closeBackend, err := openBackend(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage backend: %w", err)
	}
	defer closeBackend()

	store := notes.NewStore(backend)

	opts := []bot.Option{
		bot.WithPageSize(cfg.Bot.PageSize),
		bot.WithPreviewRunes(cfg.Bot.PreviewRunes),
	}
	if cfg.RateLimit.EventsPerSecond > 0 {
		limiter := ratelimit.New(ratelimit.Config{
			EventsPerSecond: cfg.RateLimit.EventsPerSecond,
			Burst:           cfg.RateLimit.Burst,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
		defer limiter.Stop()
		opts = append(opts, bot.WithLimiter(limiter))
	}

	engine := bot.NewEngine(store, opts...)
	server := web.NewServer(cfg.Server.ListenAddr, web.NewHandler(engine))

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// openBackend builds the configured persistence backend and returns a
// cleanup func to run at exit.
func openBackend(cfg config.StorageConfig) (notes.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		m := storage.NewMemory()
		return m, func() { m.Close() }, nil
	case config.BackendFile:
		f, err := storage.NewJSONFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	case config.BackendSQLite:
		s, err := storage.NewSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
