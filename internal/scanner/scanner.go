// Package scanner enumerates the usable host addresses of a CIDR block
// and drives bounded-concurrency probing of each one.
package scanner

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"assetwatch/internal/domain"
	"assetwatch/internal/probe"
)

// ErrInvalidSubnet reports a malformed CIDR block. It is the only error
// a scan can return; unreachable hosts are silently omitted.
var ErrInvalidSubnet = errors.New("invalid subnet")

// maxHosts caps how many addresses a single pass will probe, keeping
// scan duration bounded on wide prefixes.
const maxHosts = 254

// Scanner probes every usable host in a subnet through a fixed-size
// worker pool.
type Scanner struct {
	prober        probe.HostProber
	maxConcurrent int
}

// New creates a scanner. maxConcurrent bounds parallel probes; values
// below one fall back to a sensible default.
func New(prober probe.HostProber, maxConcurrent int) *Scanner {
	if maxConcurrent < 1 {
		maxConcurrent = 32
	}
	return &Scanner{prober: prober, maxConcurrent: maxConcurrent}
}

// Scan probes every usable host address in cidr and returns the results
// for hosts that responded. The CIDR is validated before any probing;
// a malformed block fails with ErrInvalidSubnet. Cancelling ctx stops
// dispatching new probes and returns whatever has completed; in-flight
// probes are awaited up to their own timeout rather than killed.
func (s *Scanner) Scan(ctx context.Context, cidr string) ([]domain.ScanResult, error) {
	hosts, err := HostAddresses(cidr)
	if err != nil {
		return nil, err
	}

	log.Printf("Scan: probing %d hosts in %s (workers=%d)", len(hosts), cidr, s.maxConcurrent)

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		results []domain.ScanResult
		wg      sync.WaitGroup
	)

	wg.Add(s.maxConcurrent)
	for i := 0; i < s.maxConcurrent; i++ {
		go func() {
			defer wg.Done()
			for ip := range jobs {
				result := s.prober.Probe(ctx, ip)
				if !result.Alive {
					continue
				}
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}()
	}

	// Dispatch until done or cancelled. Closing jobs lets in-flight
	// probes drain instead of being abandoned.
	for _, ip := range hosts {
		select {
		case <-ctx.Done():
			log.Printf("Scan: cancelled after dispatching to %s", cidr)
			goto drain
		case jobs <- ip:
		}
	}

drain:
	close(jobs)
	wg.Wait()

	log.Printf("Scan: %s complete, %d hosts responded", cidr, len(results))
	return results, nil
}

// HostAddresses expands a CIDR block into its usable host addresses.
// The network and broadcast addresses are excluded where the prefix
// defines them (/30 and wider); /31 and /32 have no such reserved
// addresses. The result is capped at maxHosts entries.
func HostAddresses(cidr string) ([]string, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubnet, cidr)
	}

	ip := ipNet.IP.To4()
	if ip == nil {
		return nil, fmt.Errorf("%w: %q is not an IPv4 block", ErrInvalidSubnet, cidr)
	}

	ones, bits := ipNet.Mask.Size()
	network := binary.BigEndian.Uint32(ip)
	broadcast := network | ^binary.BigEndian.Uint32(ipNet.Mask)

	first, last := network, broadcast
	if ones <= 30 && bits == 32 {
		first++
		last--
	}

	hosts := make([]string, 0, min(int(last-first)+1, maxHosts))
	for addr := first; len(hosts) < maxHosts; addr++ {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, addr)
		hosts = append(hosts, net.IP(buf).String())
		// Checked after the append: incrementing past the top of the
		// IPv4 space would wrap addr back to 0.0.0.0.
		if addr == last {
			break
		}
	}

	return hosts, nil
}
