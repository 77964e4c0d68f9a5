package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"anki-mcp-go/internal/telemetry"
)

// Config contains the HTTP server configuration.
type Config struct {
	// AnkiConnectEndpoint is the resolved endpoint, reported on /health.
	AnkiConnectEndpoint string
}

// New creates the HTTP handler for the SSE transport mode: the MCP SSE
// endpoints plus health and metrics.
func New(cfg Config, mcpSrv *mcpserver.MCPServer, metrics *telemetry.Metrics, gatherer prometheus.Gatherer) http.Handler {
	sse := mcpserver.NewSSEServer(mcpSrv)

	r := chi.NewRouter()

	// Add middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.HTTPMetricsMiddleware(metrics))

	// Enable CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Type", "Cache-Control", "Connection"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{
			"status":               "ok",
			"ankiconnect_endpoint": cfg.AnkiConnectEndpoint,
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// SSE transport: /sse for the event stream, /message for client calls
	r.Mount("/", sse)

	return r
}

// Degraded returns a handler that answers every request with a fixed JSON
// error body. Used as a last-resort listener when the MCP server cannot be
// brought up, so a probing client gets a diagnostic instead of a refused
// connection.
func Degraded(message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		render.Status(req, http.StatusServiceUnavailable)
		render.JSON(w, req, map[string]any{
			"status": "error",
			"error":  message,
		})
	})
}
