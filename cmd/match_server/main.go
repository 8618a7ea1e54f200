package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/ManaSearch/internal/config"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/grpc/matchserver"
	"github.com/mitchelldurbincs/ManaSearch/internal/match"
	"github.com/mitchelldurbincs/ManaSearch/internal/mcts"
	"github.com/mitchelldurbincs/ManaSearch/internal/monitoring"
	"github.com/mitchelldurbincs/ManaSearch/internal/spectator"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The gRPC port (-1 to use config default)")
	wsPort := flag.Int("ws-port", -1, "The spectator websocket port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxMatches := flag.Int("max-matches", -1, "Maximum concurrent matches (-1 to use config default)")
	watch := flag.Bool("watch-config", false, "Reload the log level when the config file changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *port == -1 {
		*port = cfg.Server.GRPCPort
	}
	if *wsPort == -1 {
		*wsPort = cfg.Server.WebsocketPort
	}
	if *host == "" {
		*host = cfg.Server.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	if *maxMatches == -1 {
		*maxMatches = cfg.Match.MaxMatches
	}

	setupLogging(*logLevel)

	if *watch {
		config.WatchConfig(func(c *config.Config, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("Ignoring invalid config change")
				return
			}
			level, err := zerolog.ParseLevel(c.Server.LogLevel)
			if err != nil {
				log.Warn().Err(err).Msg("Ignoring invalid log level")
				return
			}
			zerolog.SetGlobalLevel(level)
			log.Info().Str("log_level", level.String()).Msg("Config reloaded")
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := match.NewStore(ctx, cfg.Store(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open match store")
	}
	defer store.Close()

	hub := spectator.NewHub(log.Logger)
	go hub.Run(ctx)

	metrics := mcts.NewMetrics()
	runner := match.NewRunner(match.RunnerConfig{
		Concurrency: cfg.Match.Concurrency,
		Store:       store,
		Game:        cfg.GameSettings(),
		Random:      cfg.RandomPlayer(),
		Budget:      cfg.Budget(),
		Exploration: cfg.MCTS.Exploration,
		RolloutCap:  cfg.MCTS.MaxRolloutActions,
		Metrics:     metrics,
		Observe: func(_ string, bus *events.EventBus) {
			hub.Attach(bus)
		},
	}, log.Logger)

	matchService := matchserver.NewServer(runner, *maxMatches, log.Logger)

	monitor := monitoring.NewGoroutineMonitor(log.Logger, 0, 0)
	monitor.Track("active_matches", matchService.ActiveMatches)
	monitor.Track("spectators", hub.Clients)
	monitor.Track("mcts_searches", func() int { return int(metrics.Snapshot().Searches) })
	go monitor.Run(ctx)

	log.Info().
		Int("port", *port).
		Int("ws_port", *wsPort).
		Str("host", *host).
		Int("max_matches", *maxMatches).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting match server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(matchserver.ServerOptions(log.Logger)...)
	matchserver.RegisterMatchServiceServer(grpcServer, matchService)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(matchserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Server.EnableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", *host, *wsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(matchserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(cfg.Server.GracefulShutdownDelay) * time.Second)

		log.Info().Msg("Gracefully stopping servers")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Websocket server shutdown")
		}
		grpcServer.GracefulStop()
		cancel()
	}()

	go func() {
		log.Info().Str("address", httpServer.Addr).Msg("Spectator websocket listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve websocket")
		}
	}()

	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()

	snap := metrics.Snapshot()
	log.Info().
		Int64("matches_played", runner.Played()).
		Int64("matches_failed", runner.Failed()).
		Int64("searches", snap.Searches).
		Float64("iterations_per_second", snap.IterationsPerSecond()).
		Msg("Server shutdown complete")
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
