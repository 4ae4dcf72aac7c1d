package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sourcesync/domain/event"
	"sourcesync/infrastructure/executor"
	"sourcesync/infrastructure/grpc/server"
	"sourcesync/infrastructure/rest"
	"sourcesync/infrastructure/websocket"
	"sourcesync/internal"
	"sourcesync/moderation"
	"sourcesync/observability"
	"sourcesync/runtime"
	"sourcesync/runtime/workers"
	"sourcesync/services"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "SourceSync terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups always run before the exit code reaches main.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment wins anyway.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Chat moderation
	dictionary, err := moderation.LoadDictionary(moderation.Censored, moderation.CensoredDir)
	if err != nil {
		return exitConfig, fmt.Errorf("censored dictionary: %w", err)
	}
	moderator, err := moderation.NewModerator(dictionary.Words, charReplacement, logger)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator: %w", err)
	}
	logger.Info("Chat moderation ready", "languages", dictionary.Languages, "words", len(dictionary.Words))

	// 3. Room coordination
	telemetryChan := make(chan event.Event, config.TelemetryBufferSize)
	registry := runtime.NewRegistry()
	relay := runtime.NewRelay(logger, registry, telemetryChan, config.SinkTimeout)
	coordinator := runtime.NewCoordinator(logger, registry, relay, runtime.NewRoomTable(),
		moderation.NewChatFilter(moderator, logger))
	rooms := services.NewRoomService(coordinator)
	executions := services.NewExecutionService(logger,
		executor.NewPistonClient(logger, config.ExecutorURL, config.ExecutorTimeout))

	// 4. Supervision & telemetry
	counter := event.NewCounter()
	monitoring := observability.NewMonitoringManager(counter, 3*config.MetricInterval)
	handlers := []event.Handler{
		event.NewQueueCapacityHandler(logger, config.LowCapacityThreshold),
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewDeliveryFailedHandler(logger, counter),
		event.NewProcessStatsHandler(logger),
		monitoring,
	}
	sup := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)
	sup.Add(
		workers.NewTelemetryWorker(logger, telemetryChan, handlers),
		workers.NewQueueCapacityWorker(logger, registry, telemetryChan, config.MetricInterval),
		workers.NewProcessStatsWorker(logger, telemetryChan, config.MetricInterval),
	)

	// 5. Transports
	wsServer := websocket.NewServer(logger, rooms, websocket.Config{
		ReliableBuffer:  config.ConnectionBufferSize,
		AudioBuffer:     config.AudioBufferSize,
		WriteTimeout:    config.WriteTimeout,
		PingInterval:    config.PingInterval,
		MaxMessageBytes: config.MaxMessageBytes,
		AllowedOrigins:  config.AllowedOrigins(),
	})
	router, err := rest.NewRouter(logger, config.AllowedOrigins(),
		rest.NewRoomController(rooms, wsServer),
		rest.NewExecutionController(executions),
		rest.NewHealthController(rooms, monitoring),
	)
	if err != nil {
		return exitConfig, err
	}

	grpcListener, err := net.Listen("tcp", config.GrpcAddress())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.GrpcAddress(), err)
	}
	health := server.NewHealthServer(logger)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sup.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", config.HTTPAddress())
		if err := router.Start(config.HTTPAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := health.Serve(grpcListener); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	// 7. Graceful shutdown
	// Probes go NOT_SERVING first, then every socket gets a close frame
	// before the listeners stop.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")
		health.Drain()
		coordinator.Close()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), config.ShutdownTimeout)
		defer cancel()
		if err := router.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", "error", err)
		}
		health.Stop()
		sup.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Program stopped on error", slog.Any("error", err))
		return exitRuntime, err
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}
