package ankiconnect

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultEndpoint is the AnkiConnect endpoint used when no override is set
// and auto-discovery finds nothing better.
const DefaultEndpoint = "http://127.0.0.1:8765"

// defaultPort is the port the AnkiConnect add-on listens on.
const defaultPort = "8765"

// EndpointResolver resolves the AnkiConnect endpoint at startup.
type EndpointResolver interface {
	// Resolve returns the base URL to use for AnkiConnect requests.
	Resolve(ctx context.Context) string
}

// Dialer is the subset of net.Dialer used for endpoint probing.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// ResolverConfig contains configuration for the probe resolver
type ResolverConfig struct {
	// Override is an explicit endpoint. When set it wins unconditionally.
	Override string

	// ProbeTimeout bounds each TCP connection probe.
	ProbeTimeout time.Duration

	// Dialer overrides the dialer used for probing.
	Dialer Dialer
}

// ProbeResolver resolves the AnkiConnect endpoint by probing candidate
// addresses. On a nested Linux environment atop a Windows host the add-on
// usually listens on the Windows side, so loopback is not enough; the host
// is reachable via the DNS resolver address or the default gateway.
type ProbeResolver struct {
	override string
	timeout  time.Duration
	dialer   Dialer
	logger   zerolog.Logger

	// Injectable for tests.
	procVersionPath string
	resolvConfPath  string
	routePath       string
}

// NewProbeResolver creates a new probe resolver
func NewProbeResolver(cfg ResolverConfig, logger zerolog.Logger) *ProbeResolver {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: timeout}
	}
	return &ProbeResolver{
		override:        strings.TrimRight(cfg.Override, "/"),
		timeout:         timeout,
		dialer:          dialer,
		logger:          logger.With().Str("component", "endpoint_resolver").Logger(),
		procVersionPath: "/proc/version",
		resolvConfPath:  "/etc/resolv.conf",
		routePath:       "/proc/net/route",
	}
}

// Resolve returns the AnkiConnect base URL. Explicit override first, then
// probing when running under a Windows interop layer, then loopback.
func (r *ProbeResolver) Resolve(ctx context.Context) string {
	if r.override != "" {
		r.logger.Info().
			Str("endpoint", r.override).
			Msg("Using explicit AnkiConnect endpoint")
		return r.override
	}

	if !r.insideWindowsInterop() {
		r.logger.Debug().
			Str("endpoint", DefaultEndpoint).
			Msg("Using loopback AnkiConnect endpoint")
		return DefaultEndpoint
	}

	for _, host := range r.candidateHosts() {
		addr := net.JoinHostPort(host, defaultPort)
		if r.probe(ctx, addr) {
			endpoint := fmt.Sprintf("http://%s", addr)
			r.logger.Info().
				Str("endpoint", endpoint).
				Msg("Discovered AnkiConnect endpoint")
			return endpoint
		}
		r.logger.Debug().
			Str("addr", addr).
			Msg("Candidate endpoint not reachable")
	}

	r.logger.Warn().
		Str("endpoint", DefaultEndpoint).
		Msg("No candidate endpoint reachable, falling back to loopback")
	return DefaultEndpoint
}

// insideWindowsInterop reports whether the process runs in a Linux
// environment hosted by Windows (WSL), where loopback does not reach the
// host.
func (r *ProbeResolver) insideWindowsInterop() bool {
	data, err := os.ReadFile(r.procVersionPath)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// candidateHosts returns probe candidates in priority order: the DNS
// resolver address, the default route gateway, the common bridge address,
// and loopback last.
func (r *ProbeResolver) candidateHosts() []string {
	seen := make(map[string]bool)
	var hosts []string
	add := func(host string) {
		if host == "" || seen[host] {
			return
		}
		seen[host] = true
		hosts = append(hosts, host)
	}

	add(r.nameserver())
	add(r.defaultGateway())
	add("172.17.0.1")
	add("127.0.0.1")
	return hosts
}

// nameserver returns the first nameserver from the DNS resolver
// configuration.
func (r *ProbeResolver) nameserver() string {
	data, err := os.ReadFile(r.resolvConfPath)
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) >= 2 && fields[0] == "nameserver" {
			if ip := net.ParseIP(fields[1]); ip != nil && ip.To4() != nil {
				return fields[1]
			}
		}
	}
	return ""
}

// defaultGateway returns the IPv4 default route gateway from the kernel
// routing table.
func (r *ProbeResolver) defaultGateway() string {
	data, err := os.ReadFile(r.routePath)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}

		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			continue
		}
		// The kernel writes the gateway in little-endian byte order.
		ip := net.IPv4(raw[3], raw[2], raw[1], raw[0])
		if ip.IsUnspecified() {
			continue
		}
		return ip.String()
	}
	return ""
}

// probe attempts a short TCP connection to addr.
func (r *ProbeResolver) probe(ctx context.Context, addr string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := r.dialer.DialContext(probeCtx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// StaticResolver always resolves to a fixed endpoint. Used in tests and
// when probing is undesirable.
type StaticResolver struct {
	Endpoint string
}

// Resolve returns the fixed endpoint.
func (r StaticResolver) Resolve(ctx context.Context) string {
	return r.Endpoint
}
