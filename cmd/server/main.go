package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wizardchess/magic-chess-backend/internal/config"
	"github.com/wizardchess/magic-chess-backend/internal/controller"
	"github.com/wizardchess/magic-chess-backend/internal/middleware"
	"github.com/wizardchess/magic-chess-backend/internal/service"
	"github.com/wizardchess/magic-chess-backend/internal/store"
)

var configPath = flag.String("config", "config/config.yaml", "path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting magic chess server", zap.String("config", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Rating persistence is optional; without a database the server runs
	// casual games only.
	var playerStore *store.PlayerStore
	if cfg.Database.URL != "" {
		pool, err := store.NewDB(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		playerStore = store.NewPlayerStore(pool, logger)
		if err := playerStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
	} else {
		logger.Warn("no database configured; ratings will not be persisted")
	}

	gameManager := service.NewGameManager(cfg.Game.InitialClock, cfg.Matchmaking.Tick, playerStore, logger)
	gameService := service.NewGameService(gameManager)

	gameController := controller.NewGameController(gameService, logger)
	wsController := controller.NewWebSocketController(gameService, logger)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Use("/ws/game/:gameId", middleware.WebSocketUpgrade())
	app.Get("/ws/game/:gameId", websocket.New(func(c *websocket.Conn) {
		wsController.HandleConnection(c)
	}, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Get("/matchmaking/wait", gameController.WaitForMatch)
	gameRoutes.Post("/matchmaking/leave", gameController.LeaveMatchmaking)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/create/bot", gameController.CreateBotGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)

	api.Get("/player/profile", gameController.GetPlayerProfile)

	go func() {
		logger.Info("listening", zap.String("address", cfg.Server.Address))
		if err := app.Listen(cfg.Server.Address); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("magic chess server stopped")
}

// initLogger builds the zap logger from configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
