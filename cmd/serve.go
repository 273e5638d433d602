package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/threadlens/threadlens/internal/buildcfg"
	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/logging"
	"github.com/threadlens/threadlens/internal/server"
)

const shutdownTimeout = 10 * time.Second

// MetricsConfig holds the metrics server settings resolved from flags and
// environment.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var (
		addr              string
		debugMode         bool
		completionBaseURL string
		hostBaseURL       string
		metricsEnabled    bool
		metricsAddr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the widget backend server",
		Long: `Serve runs the HTTP backend for the conversation widget. It exposes:

  /api/completion  - proxies summarization requests to the completion vendor
  /api/host/*      - proxies a restricted set of Missive API endpoints
  /healthz         - liveness probe
  /readyz          - readiness probe

Both proxies attach server-side credentials so the widget never handles API
keys. Credentials are read from the MISSIVE_API_TOKEN and OPEN_AI_API
environment variables (a .env file in the working directory is honored).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, debugMode, completionBaseURL, hostBaseURL, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address for the widget backend to listen on. Can also use PORT env var.")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&completionBaseURL, "completion-base-url", "", "Override the completion vendor base URL")
	cmd.Flags().StringVar(&hostBaseURL, "host-base-url", "", "Override the Missive API base URL. Can also use MISSIVE_API_BASE_URL env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(addr string, debugMode bool, completionBaseURL, hostBaseURL string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	logger := newLogger(debugMode)
	slog.SetDefault(logger)

	if addr == "" || addr == ":8080" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}
	if hostBaseURL == "" {
		hostBaseURL = os.Getenv(buildcfg.EnvHostBaseURL)
	}

	// Load metrics config from environment if not set via flags
	if os.Getenv("METRICS_ENABLED") == "false" {
		metricsConfig.Enabled = false
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if envAddr := os.Getenv("METRICS_ADDR"); envAddr != "" {
			metricsConfig.Addr = envAddr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	completionKey := os.Getenv(buildcfg.EnvCompletionKey)
	hostToken := os.Getenv(buildcfg.EnvHostToken)
	if hostToken == "" {
		logger.Warn("host API token not configured, host proxy requests will fail",
			slog.String("variable", buildcfg.EnvHostToken))
	}
	if completionKey == "" {
		logger.Warn("completion API key not configured, completion requests will fail",
			slog.String("variable", buildcfg.EnvCompletionKey))
	}
	logger.Debug("credentials loaded",
		slog.String("host_token", logging.SanitizeToken(hostToken)),
		slog.String("completion_key", logging.SanitizeToken(completionKey)))

	serverContext := server.NewServerContext(shutdownCtx, completionKey, hostToken)
	defer func() {
		// Shutdown metrics server first so scrapes stop before the proxy
		// context is torn down.
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	proxy, err := server.NewProxy(server.ProxyConfig{
		ServerContext:     serverContext,
		CompletionBaseURL: completionBaseURL,
		HostBaseURL:       hostBaseURL,
		Logger:            logger,
		Metrics:           provider.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create proxy: %w", err)
	}

	mux := http.NewServeMux()
	proxy.Register(mux)

	health := server.NewHealthChecker(serverContext)
	health.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("widget backend listening", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()
	health.SetReady(true)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server stopped with error: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("shutting down")
	health.SetReady(false)

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
