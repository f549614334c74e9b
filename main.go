package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/backsoul/globetrotter/pkg/badgerdb"
	"github.com/backsoul/globetrotter/pkg/config"
	"github.com/backsoul/globetrotter/pkg/handlers"
	"github.com/backsoul/globetrotter/pkg/redis"
	"github.com/backsoul/globetrotter/pkg/services"
	"github.com/backsoul/globetrotter/pkg/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/valyala/fasthttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)
	log.Info("🚀 Starting Globetrotter room server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing content store...", "backend", store.Backend())
		_ = store.Close()
	}()

	content := services.NewContentService(store, cfg.ContentTimeout, log)
	loadInitialDestinations(ctx, content, cfg.SeedFile, log)

	hub := websocket.NewHub(websocket.Config{
		SendBuffer:   cfg.ClientSendBuffer,
		PingInterval: cfg.PingInterval,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	registry := services.NewRoomRegistry(cfg.RoomCapacity, cfg.MaxRounds, log)
	rooms := services.NewRoomService(
		registry,
		services.NewRoundService(content, hub, cfg.OptionsPerRound, log),
		services.NewAnswerService(content, hub, log),
		services.NewDisconnectReaper(registry, hub, cfg.ReconnectGrace, log),
		hub,
		services.RoomConfig{
			AutoAdvanceDelay:      cfg.AutoAdvanceDelay,
			RequireExternalUserID: cfg.RequireExternalUserID,
		},
		log,
	)
	defer rooms.Shutdown()

	router := handlers.NewRouter(
		handlers.NewContentHandler(content, rooms, cfg.SeedFile, cfg.ContentTimeout, log),
		handlers.NewRoomHandler(rooms),
		handlers.NewSocketHandler(rooms, hub, cfg.Origins(), cfg.StrictNotFound, log),
		cfg.Origins(),
		log,
	)

	server := &fasthttp.Server{
		Handler: router.HandleRequest,
		Name:    "Globetrotter Server",
	}

	address := cfg.Address()
	errChan := make(chan error, 1)
	go func() {
		log.Info("🎮 Server started", "address", address, "backend", store.Backend())
		log.Info("🔧 API Health: /api/health")
		log.Info("🔌 WebSocket: /ws")
		if err := server.ListenAndServe(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// Deferred cleanup then stops the rooms before the hub, so no timer fires into a closed hub.
	if err := server.Shutdown(); err != nil {
		log.Warn("Server shutdown", "error", err)
	}
	log.Info("Server stopped cleanly")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.DestinationStore, error) {
	switch cfg.ContentBackend {
	case config.BackendBadger:
		log.Info("📦 Opening BadgerDB", "path", cfg.BadgerPath)
		store, err := badgerdb.Open(cfg.BadgerPath, log)
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		return store, nil
	default:
		log.Info("🔌 Connecting to Redis", "address", cfg.RedisAddr)
		client, err := redis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return client, nil
	}
}

// loadInitialDestinations seeds an empty store. The server keeps running without
// content; rounds stall until POST /api/destinations/reload succeeds.
func loadInitialDestinations(ctx context.Context, content *services.ContentService, seedFile string, log *slog.Logger) {
	log.Info("📚 Loading initial destinations...")
	count, err := content.SeedIfEmpty(ctx, seedFile)
	if err != nil {
		log.Warn("⚠️ Error loading initial destinations", "file", seedFile, "error", err)
		log.Info("💡 Destinations can be loaded with POST /api/destinations/reload")
		return
	}
	log.Info("✅ Destinations available", "count", count)
}
