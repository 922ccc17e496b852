package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/mcthuva007/Acadamist/auth"
	"github.com/mcthuva007/Acadamist/broadcast"
	"github.com/mcthuva007/Acadamist/cliparse"
	"github.com/mcthuva007/Acadamist/db"
	"github.com/mcthuva007/Acadamist/middleware"
	"github.com/mcthuva007/Acadamist/router"
	"github.com/mcthuva007/Acadamist/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	setupLogging()

	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "gen-admin-key" {
		key, err := auth.GenerateAdminKey()
		if err != nil {
			slog.Error("failed to generate admin key", "error", err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		slog.Error("store backend unavailable", "store_type", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := broadcast.NewHub()
	st := store.New(backend, hub)
	st.Load(ctx)

	if cfg.AdminKey == "" {
		slog.Warn("ADMIN_KEY not set, anyone can clear votes")
	}

	server := http.Server{
		Handler: middleware.CORS(router.NewRouter(st, hub, cfg)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "store_type", cfg.StoreType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	// Hijacked WebSocket connections are not tracked by Shutdown
	g.Go(func() error {
		return hub.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

// setupLogging uses readable text logs on a terminal and JSON otherwise.
func setupLogging() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if os.Getenv("LOG_LEVEL") == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openBackend returns the store backend for cfg and a func releasing it.
func openBackend(cfg cliparse.Config) (store.Backend, func(), error) {
	switch cfg.StoreType {
	case cliparse.StoreSQLite, cliparse.StorePostgres:
		driver := cfg.StoreType
		dialect := db.DialectSQLite
		if cfg.StoreType == cliparse.StorePostgres {
			dialect = db.DialectPostgres
		}

		conn, err := sql.Open(driver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}

		backend, err := store.NewSQLBackend(conn, dialect)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		slog.Info("Database schema ready", "store_type", cfg.StoreType)
		return backend, func() { conn.Close() }, nil

	default:
		slog.Info("Using data file", "path", cfg.DataFile)
		return store.NewFileBackend(cfg.DataFile), func() {}, nil
	}
}
