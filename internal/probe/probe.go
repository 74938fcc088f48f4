// Package probe determines whether a single host is reachable and, when
// it is, resolves its hardware address from the local neighbor table.
//
// The reachability and resolution capabilities are split behind small
// interfaces with platform-specific implementations (POSIX neighbor
// table, Windows ARP table) selected once at startup. An nmap-backed
// prober can be selected instead when the binary is available.
package probe

import (
	"context"
	"log"
	"runtime"
	"time"

	"assetwatch/internal/domain"
)

// HostProber checks one network address and reports what it saw. A dead
// or unresolvable host is a normal result, never an error.
type HostProber interface {
	Probe(ctx context.Context, ip string) domain.ScanResult
}

// Config controls prober construction.
type Config struct {
	// Timeout bounds the reachability check for a single host
	Timeout time.Duration
	// UseNmap selects the nmap-backed prober when the binary is present
	UseNmap bool
}

// DefaultConfig returns conservative per-host probe settings.
func DefaultConfig() Config {
	return Config{Timeout: 1 * time.Second}
}

// New selects and builds a prober for the current platform. Selection
// happens here, once, rather than branching on every probe call.
func New(cfg Config) HostProber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1 * time.Second
	}

	if cfg.UseNmap {
		if p, err := newNmapProber(cfg.Timeout); err == nil {
			log.Printf("Probe: using nmap prober (timeout=%s)", cfg.Timeout)
			return p
		} else {
			log.Printf("Probe: nmap requested but unavailable (%v), falling back to ping", err)
		}
	}

	var resolver neighborResolver
	if runtime.GOOS == "windows" {
		resolver = &windowsResolver{run: runCommand}
	} else {
		resolver = &posixResolver{run: runCommand}
	}

	log.Printf("Probe: using system ping prober (platform=%s, timeout=%s)", runtime.GOOS, cfg.Timeout)
	return &pingProber{
		timeout:  cfg.Timeout,
		pinger:   &systemPinger{run: runCommand},
		resolver: resolver,
	}
}

// pinger checks host liveness. Implementations bound the check by the
// supplied timeout; a failure of any kind means "not alive".
type pinger interface {
	Ping(ctx context.Context, ip string, timeout time.Duration) bool
}

// neighborResolver looks up the hardware address for a live host from
// the local address-resolution cache. An empty result means the entry
// was absent or incomplete, which is not an error condition.
type neighborResolver interface {
	Resolve(ctx context.Context, ip string) string
}

// pingProber combines a reachability check with neighbor resolution.
type pingProber struct {
	timeout  time.Duration
	pinger   pinger
	resolver neighborResolver
}

// Probe pings the host and, only if it answered, attempts to read its
// hardware address from the neighbor table. Resolution may still miss
// (the cache entry can be evicted between ping and lookup); that folds
// into a result with an empty MAC.
func (p *pingProber) Probe(ctx context.Context, ip string) domain.ScanResult {
	result := domain.ScanResult{IP: ip}

	if !p.pinger.Ping(ctx, ip, p.timeout) {
		return result
	}
	result.Alive = true
	result.MAC = p.resolver.Resolve(ctx, ip)
	return result
}
