package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"anki-mcp-go/internal/anki"
	"anki-mcp-go/internal/ankiconnect"
	"anki-mcp-go/internal/config"
	"anki-mcp-go/internal/server"
	"anki-mcp-go/internal/telemetry"
	"anki-mcp-go/internal/tools"
	ankitools "anki-mcp-go/internal/tools/anki"
)

const (
	serverName    = "Anki Card Creator"
	serverVersion = "1.0.0"
)

func main() {
	// A missing .env file is fine, the environment alone is enough
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	cfg := config.FromEnv()

	// Configure logger. Stdout carries the MCP protocol in stdio mode, so
	// all logging goes to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()

	logger.Info().
		Str("transport", cfg.Transport).
		Msg("Starting Anki MCP server")

	// Resolve the AnkiConnect endpoint once; it is read-only afterwards.
	resolver := ankiconnect.NewProbeResolver(ankiconnect.ResolverConfig{
		Override:     cfg.AnkiConnectURL,
		ProbeTimeout: cfg.ProbeTimeout,
	}, logger)
	endpoint := resolver.Resolve(context.Background())

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	client := ankiconnect.NewClient(ankiconnect.ClientConfig{
		Endpoint: endpoint,
		APIKey:   cfg.APIKey,
		Observer: metrics.RecordAnkiConnectRequest,
	}, logger)

	service := anki.NewService(client, logger)

	// Register tools
	toolRegistry := tools.NewRegistry()
	toolRegistry.Register(ankitools.NewAddCardTool(service))
	toolRegistry.Register(ankitools.NewListDecksTool(service))
	toolRegistry.Register(ankitools.NewListModelsTool(service))
	toolRegistry.Register(ankitools.NewCollectionInfoTool(service))
	for name := range toolRegistry.List() {
		logger.Info().Str("tool", name).Msg("Registered tool")
	}

	mcpSrv := mcpserver.NewMCPServer(serverName, serverVersion,
		mcpserver.WithToolCapabilities(true),
	)
	toolRegistry.Attach(mcpSrv, telemetry.NewCallerWrapper(toolRegistry, metrics))

	switch cfg.Transport {
	case config.TransportStdio:
		logger.Info().Msg("Serving MCP over stdio")
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			logger.Fatal().Err(err).Msg("Server failed")
		}

	case config.TransportSSE:
		handler := server.New(server.Config{
			AnkiConnectEndpoint: endpoint,
		}, mcpSrv, metrics, registry)

		collector := telemetry.NewSystemMetricsCollector(metrics, logger, 30*time.Second)
		go collector.Start(context.Background())
		defer collector.Stop()

		logger.Info().Str("addr", cfg.ListenAddr).Msg("Serving MCP over SSE")
		httpSrv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: handler,
		}
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}

	default:
		// Degraded operability path: answer every request with a fixed
		// error body instead of refusing connections outright.
		msg := fmt.Sprintf("unsupported transport %q, expected %q or %q",
			cfg.Transport, config.TransportStdio, config.TransportSSE)
		logger.Error().Str("transport", cfg.Transport).Msg("Unsupported transport, starting degraded listener")
		if err := http.ListenAndServe(cfg.ListenAddr, server.Degraded(msg)); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start degraded listener")
		}
	}
}
