package config

import (
	"os"
	"strings"
	"time"
)

// Transport selects how the MCP server talks to its host.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config contains the runtime configuration for the server.
type Config struct {
	// AnkiConnectURL is an explicit endpoint override. When empty the
	// endpoint resolver probes for a reachable AnkiConnect instance.
	AnkiConnectURL string

	// APIKey is the optional AnkiConnect API credential. When set it is
	// included in every request body.
	APIKey string

	// Transport is the MCP transport mode: "stdio" or "sse".
	Transport string

	// ListenAddr is the HTTP listen address used in SSE mode.
	ListenAddr string

	// Verbose enables debug-level logging.
	Verbose bool

	// ProbeTimeout bounds each TCP probe during endpoint auto-discovery.
	ProbeTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		AnkiConnectURL: "",
		APIKey:         "",
		Transport:      TransportStdio,
		ListenAddr:     ":8080",
		Verbose:        false,
		ProbeTimeout:   time.Second,
	}
}

// FromEnv returns the default configuration overlaid with values from the
// environment.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ANKICONNECT_URL"); v != "" {
		cfg.AnkiConnectURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("ANKICONNECT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ANKI_MCP_TRANSPORT"); v != "" {
		cfg.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("ANKI_MCP_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ANKI_MCP_VERBOSE"); v != "" {
		cfg.Verbose = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ANKI_MCP_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ProbeTimeout = d
		}
	}

	return cfg
}
