// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/slidebox/internal/api/connect"
	"github.com/osa030/slidebox/internal/api/events"
	"github.com/osa030/slidebox/internal/api/web"
	"github.com/osa030/slidebox/internal/app/filter"
	"github.com/osa030/slidebox/internal/app/session"
	"github.com/osa030/slidebox/internal/infra/config"
	"github.com/osa030/slidebox/internal/infra/display"
	"github.com/osa030/slidebox/internal/infra/logger"
)

var (
	app        = kingpin.New("slidebox-server", "slidebox slideshow server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// check-config command
	checkConfigCmd = app.Command("check-config", "Validate the config file and exit")

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Handle check-config command
	if command == checkConfigCmd.FullCommand() {
		printConfig(cfg)
		return
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Create session manager
	sessionMgr, err := session.NewManager(cfg, session.Options{})
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}
	if err := sessionMgr.Start(ctx); err != nil {
		sessionMgr.Close()
		return errors.Wrap(err, "failed to start session")
	}

	// Create HTTP mux
	mux := http.NewServeMux()

	// Register RPC service
	adminAuthInterceptor := apiconnect.NewAdminAuthInterceptor(cfg.Admin.Token)
	servicePath, serviceHandler := apiconnect.NewSlideshowServiceHandler(
		apiconnect.NewSlideshowService(sessionMgr),
		connect.WithInterceptors(adminAuthInterceptor),
	)
	mux.Handle(servicePath, serviceHandler)

	// Register image endpoint
	mux.Handle("/images/", web.NewImageHandler(sessionMgr.Controller()))

	// Register SSE endpoint
	var publisher *events.Publisher
	if !cfg.Events.SSEDisabled {
		publisher = events.NewPublisher()
		sessionMgr.Notifications().Subscribe(publisher)
		mux.Handle("/events", publisher)
	}

	var handler http.Handler = mux
	if len(cfg.Events.CORSOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: cfg.Events.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms", apiconnect.AdminTokenHeader},
			ExposedHeaders: []string{web.ImageIDHeader},
		})
		handler = c.Handler(handler)
	}

	// Determine server address
	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	display.RunLifecycle(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		runErr = errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close session manager first to terminate active streams
	sessionMgr.Close()
	if publisher != nil {
		publisher.Close()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	display.RunLifecycle(cfg.Server.Hooks.OnStopped, "on_stopped")

	return runErr
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, name := range filter.Names() {
		f, _ := filter.New(name)
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// printConfig prints the effective configuration without secrets.
func printConfig(cfg *config.Config) {
	fmt.Println("Config OK")
	fmt.Printf("  Server address: %s\n", cfg.Server.Addr)
	fmt.Printf("  Interval: %v\n", cfg.Interval())
	fmt.Printf("  Presets: %v\n", cfg.Presets())
	fmt.Printf("  Autostart: %v\n", cfg.Slideshow.Autostart)
	fmt.Printf("  Media dir: %s (recursive: %v)\n", cfg.Media.Dir, cfg.Media.Recursive)
	if d := cfg.RescanInterval(); d > 0 {
		fmt.Printf("  Rescan every: %v\n", d)
	} else {
		fmt.Println("  Rescan: disabled")
	}
	fmt.Printf("  Fullscreen hooks: enter=%d exit=%d timeout=%v\n",
		len(cfg.Display.EnterFullscreen), len(cfg.Display.ExitFullscreen), cfg.DisplayTimeout())
	fmt.Printf("  SSE: %v\n", !cfg.Events.SSEDisabled)
	for _, name := range filter.Names() {
		if cfg.IsFilterEnabled(name) {
			fmt.Printf("  Filter: %s\n", name)
		}
	}
}
