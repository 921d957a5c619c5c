package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azrachess/azrachess/internal/config"
	"github.com/azrachess/azrachess/internal/web"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line flags
	var (
		showHelp   bool
		configPath string
	)
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to a config file (default: ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load config
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub(web.WithLogger(log.Logger.With().Str("component", "hub").Logger()))
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(cfg, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Bool("castlingMoves", cfg.Engine.CastlingMoves).
			Bool("parallelCheckFilter", cfg.Engine.ParallelCheckFilter).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func setLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Development.LogLevel)
	if err != nil || cfg.Development.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Development.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newRouter(cfg *config.Config, hub *web.Hub) http.Handler {
	service := web.NewService(cfg, hub)

	router := mux.NewRouter()
	service.Routes(router)

	// Serve the render client, if one is configured
	if cfg.Server.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}
	return web.CORS(router)
}

func showHelpMessage() {
	fmt.Println(`Azra Chess Server

DESCRIPTION:
    Local rules engine service for Azra Chess. Each game session runs the
    select-then-move cycle: the client selects a piece, receives its legal
    destinations, and then picks one. Board updates are pushed over a
    websocket to every connection watching the session.

USAGE:
    azrachess [OPTIONS]

OPTIONS:
    -h, --help        Show this help message
    -config PATH      Read configuration from PATH

CONFIGURATION:
    The server is configured via config.yaml in the current directory or
    ./config, and AZRACHESS_* environment variables.

    Example config.yaml:
        server:
          host: localhost
          port: 8080
          static_dir: ./web/static   # optional render client

        engine:
          castling_moves: false        # generate castling destinations
          parallel_check_filter: false # simulate candidates concurrently

        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET    /api/health                 - Service health check
    GET    /api/games                  - List game sessions
    POST   /api/games                  - Create a session (optional {"fen": ...})
    GET    /api/games/{id}             - Board, turn, phase, FEN, history
    DELETE /api/games/{id}             - Drop a session
    POST   /api/games/{id}/select      - Select a piece {"square": "e2"}
    DELETE /api/games/{id}/selection   - Cancel the selection
    POST   /api/games/{id}/moves       - Move {"to": "e4"} or {"from": "e2", "to": "e4"}
    POST   /api/games/{id}/restart     - Reset to the standard position
    GET    /api/games/{id}/ws          - Websocket of board updates

EXAMPLES:
    # Start with default configuration
    azrachess

    # Create a game via API
    curl -X POST http://localhost:8080/api/games

SEE ALSO:
    replay(1), config.yaml(5)`)
}
