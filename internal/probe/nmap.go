package probe

import (
	"context"
	"fmt"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"assetwatch/internal/domain"
)

// nmapProber uses an nmap ping scan (-sn) to check liveness. Nmap
// performs its own ARP resolution on local segments, so a single
// invocation yields both liveness and the hardware address.
type nmapProber struct {
	timeout time.Duration
}

// newNmapProber verifies the nmap binary is usable before committing to it.
func newNmapProber(timeout time.Duration) (*nmapProber, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets("localhost"),
		nmap.WithListScan(),
	)
	if err != nil {
		return nil, fmt.Errorf("nmap unavailable: %w", err)
	}
	if _, _, err := scanner.Run(); err != nil {
		return nil, fmt.Errorf("nmap self-check failed: %w", err)
	}

	return &nmapProber{timeout: timeout}, nil
}

func (p *nmapProber) Probe(ctx context.Context, ip string) domain.ScanResult {
	result := domain.ScanResult{IP: ip}

	ctx, cancel := context.WithTimeout(ctx, p.timeout+2*time.Second)
	defer cancel()

	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets(ip),
		nmap.WithPingScan(),
		nmap.WithHostTimeout(p.timeout),
	)
	if err != nil {
		return result
	}

	run, _, err := scanner.Run()
	if err != nil || run == nil {
		return result
	}

	for _, host := range run.Hosts {
		if host.Status.State != "up" {
			continue
		}
		result.Alive = true
		for _, addr := range host.Addresses {
			if addr.AddrType == "mac" {
				if mac, err := domain.NormalizeMAC(addr.Addr); err == nil {
					result.MAC = mac
				}
			}
		}
	}

	return result
}
