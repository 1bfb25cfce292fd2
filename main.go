package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/timed-vote/auth"
	"github.com/danielhkuo/timed-vote/clock"
	"github.com/danielhkuo/timed-vote/cliparse"
	"github.com/danielhkuo/timed-vote/db"
	"github.com/danielhkuo/timed-vote/middleware"
	"github.com/danielhkuo/timed-vote/router"
	"github.com/danielhkuo/timed-vote/store"
	"github.com/danielhkuo/timed-vote/voting"
)

// persister stores both topics and accounts
type persister interface {
	store.Persister
	auth.Persister
}

func main() {
	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

func run(cfg cliparse.Config) error {
	ctx := context.Background()

	// Open persistence
	var p persister
	if cfg.UseDatabase() {
		dbConn, err := db.Connect(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("%s database: %w", cfg.DatabaseType, err)
		}
		defer dbConn.Close()
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		p = db.NewSQLStore(dbConn)
	} else {
		fileStore, err := db.OpenFile(cfg.DataPath)
		if err != nil {
			return fmt.Errorf("data file %s: %w", cfg.DataPath, err)
		}
		slog.Info("Using data file", "path", fileStore.Path())
		p = fileStore
	}

	topics, err := store.Open(ctx, p)
	if err != nil {
		return err
	}
	accounts, err := auth.Open(ctx, p, clock.Real(), cfg.SessionTTL)
	if err != nil {
		return err
	}
	engine := voting.NewEngine(topics, clock.Real(), cfg.RevealDelay)

	// Create router
	mux := router.NewRouter(engine, accounts, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigins, mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(ctrlc)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port, "reveal_delay", engine.RevealDelay(),
			"topics", topics.Len(), "cors_origins", cfg.CORSOrigins)
		serveErr <- server.ListenAndServe()
	}()

	// Wait for Ctrl-C signal or a listener failure
	select {
	case err := <-serveErr:
		return err
	case <-ctrlc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown incomplete", "error", err)
	}
	if err := topics.Flush(shutdownCtx); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	return nil
}
