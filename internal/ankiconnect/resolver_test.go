package ankiconnect

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// stubDialer pretends that a fixed set of addresses accept connections.
type stubDialer struct {
	reachable map[string]bool
	dialed    []string
}

func (d *stubDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.dialed = append(d.dialed, address)
	if d.reachable[address] {
		client, server := net.Pipe()
		server.Close()
		return client, nil
	}
	return nil, fmt.Errorf("dial tcp %s: connection refused", address)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// newWSLResolver builds a resolver whose environment files describe a WSL
// guest with nameserver 172.29.96.1 and default gateway 172.29.96.2.
func newWSLResolver(t *testing.T, dialer Dialer) *ProbeResolver {
	t.Helper()
	dir := t.TempDir()

	r := NewProbeResolver(ResolverConfig{Dialer: dialer}, zerolog.Nop())
	r.procVersionPath = writeTestFile(t, dir, "version",
		"Linux version 5.15.90.1-microsoft-standard-WSL2 (gcc ...)\n")
	r.resolvConfPath = writeTestFile(t, dir, "resolv.conf",
		"# generated\nnameserver 172.29.96.1\n")
	// Gateway 172.29.96.2 in little-endian hex is 02601DAC
	r.routePath = writeTestFile(t, dir, "route",
		"Iface\tDestination\tGateway\tFlags\n"+
			"eth0\t00000000\t02601DAC\t0003\n"+
			"eth0\t00601DAC\t00000000\t0001\n")
	return r
}

func TestResolveExplicitOverride(t *testing.T) {
	r := NewProbeResolver(ResolverConfig{
		Override: "http://10.1.2.3:8765/",
	}, zerolog.Nop())

	got := r.Resolve(context.Background())
	if got != "http://10.1.2.3:8765" {
		t.Errorf("Expected override endpoint, got %q", got)
	}
}

func TestResolveOutsideInteropUsesLoopback(t *testing.T) {
	dialer := &stubDialer{}
	r := NewProbeResolver(ResolverConfig{Dialer: dialer}, zerolog.Nop())
	r.procVersionPath = writeTestFile(t, t.TempDir(), "version",
		"Linux version 6.1.0-generic (gcc ...)\n")

	got := r.Resolve(context.Background())
	if got != DefaultEndpoint {
		t.Errorf("Expected %q, got %q", DefaultEndpoint, got)
	}
	if len(dialer.dialed) != 0 {
		t.Errorf("Expected no probes outside the interop layer, dialed %v", dialer.dialed)
	}
}

func TestResolveProbesNameserverFirst(t *testing.T) {
	dialer := &stubDialer{reachable: map[string]bool{
		"172.29.96.1:8765": true,
	}}
	r := newWSLResolver(t, dialer)

	got := r.Resolve(context.Background())
	if got != "http://172.29.96.1:8765" {
		t.Errorf("Expected nameserver endpoint, got %q", got)
	}
	if len(dialer.dialed) != 1 {
		t.Errorf("Expected probing to stop at the first success, dialed %v", dialer.dialed)
	}
}

func TestResolveFallsThroughToGateway(t *testing.T) {
	dialer := &stubDialer{reachable: map[string]bool{
		"172.29.96.2:8765": true,
	}}
	r := newWSLResolver(t, dialer)

	got := r.Resolve(context.Background())
	if got != "http://172.29.96.2:8765" {
		t.Errorf("Expected gateway endpoint, got %q", got)
	}
}

func TestResolveNothingReachableUsesLoopback(t *testing.T) {
	dialer := &stubDialer{}
	r := newWSLResolver(t, dialer)

	got := r.Resolve(context.Background())
	if got != DefaultEndpoint {
		t.Errorf("Expected %q, got %q", DefaultEndpoint, got)
	}

	// All candidates were tried: nameserver, gateway, bridge, loopback
	if len(dialer.dialed) != 4 {
		t.Errorf("Expected 4 probes, dialed %v", dialer.dialed)
	}
}

func TestDefaultGatewayParsing(t *testing.T) {
	r := NewProbeResolver(ResolverConfig{}, zerolog.Nop())
	// 192.168.1.1 in little-endian hex is 0101A8C0
	r.routePath = writeTestFile(t, t.TempDir(), "route",
		"Iface\tDestination\tGateway\tFlags\n"+
			"eth0\t00000000\t0101A8C0\t0003\n")

	if got := r.defaultGateway(); got != "192.168.1.1" {
		t.Errorf("Expected 192.168.1.1, got %q", got)
	}
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{Endpoint: "http://localhost:8765"}
	if got := r.Resolve(context.Background()); got != "http://localhost:8765" {
		t.Errorf("Unexpected endpoint %q", got)
	}
}
