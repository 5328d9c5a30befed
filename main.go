package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spicelanes/game-server/api"
	"github.com/spicelanes/game-server/api/handlers"
	apiservices "github.com/spicelanes/game-server/api/services"
	"github.com/spicelanes/game-server/spicelanes"
	"github.com/spicelanes/game-server/spicelanes/database"
	"github.com/spicelanes/game-server/spicelanes/database/memstore"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
	"github.com/spicelanes/game-server/spicelanes/game"
	"github.com/spicelanes/game-server/spicelanes/logger"
	"github.com/spicelanes/game-server/spicelanes/services"
	"github.com/spicelanes/game-server/spicelanes/worldapp"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler("SpiceLanes")
	slog.SetDefault(slog.New(customHandler))

	logger.LogSystem("Starting Spice Lanes game server",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := spicelanes.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	customHandler.SetLevel(cfg.Log.Level)
	slog.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(-1)
	}
	defer cleanup()

	engine := game.New(store)
	if err := engine.SeedUniverse(ctx); err != nil {
		slog.Error("Failed to seed universe", slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Universe seeded",
		slog.String("type", "game"),
		slog.Int("planets", len(game.GenesisPlanets())))

	webApp := &handlers.WebApp{
		Engine:    engine,
		ShipIndex: apiservices.NewShipIndex(store.Ships()),
		Verifier:  worldapp.NewVerifier(cfg.WorldApp, store),
		Payments:  worldapp.NewPayments(cfg.WorldApp, store),
		Version:   version,
		Commit:    commit,
	}
	server := api.New(cfg.Server, webApp)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		slog.Info("Starting API server", slog.String("address", cfg.Server.Addr()))
		return server.Listen()
	})

	if cfg.Spaces.Enabled {
		archiver, err := services.NewTradeArchiver(cfg.Spaces, store.Trades())
		if err != nil {
			slog.Error("Failed to initialize trade archiver", slog.String("error", err.Error()))
			os.Exit(-1)
		}
		group.Go(func() error {
			if err := archiver.Run(groupCtx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		slog.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(-1)
	}
	logger.LogSystem("Shutdown complete")
}

// openStore selects the persistence backend from config. The memory driver
// needs no infrastructure and is for local development.
func openStore(ctx context.Context, cfg *spicelanes.Config) (repositories.Store, func(), error) {
	if cfg.DB.Driver == "memory" {
		slog.Warn("Using in-memory store, state is lost on exit")
		return memstore.New(), func() {}, nil
	}

	start := time.Now()
	db, err := database.New(ctx, database.DBConfig{
		Host:         cfg.DB.Host,
		Port:         cfg.DB.Port,
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Database:     cfg.DB.Database,
		PoolSize:     cfg.DB.PoolSize,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxLifetime:  cfg.DB.MaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	slog.Info("Database connected successfully",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database),
		slog.Duration("connected_in", time.Since(start)))

	return repositories.NewStore(db.BunDB()), func() { db.Close() }, nil
}
