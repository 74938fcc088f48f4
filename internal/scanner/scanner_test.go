package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"assetwatch/internal/domain"
)

// fakeProber answers from a fixed table and counts probe calls.
type fakeProber struct {
	mu    sync.Mutex
	alive map[string]string // ip -> mac ("" = alive, no MAC)
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, ip string) domain.ScanResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	mac, ok := f.alive[ip]
	return domain.ScanResult{IP: ip, MAC: mac, Alive: ok}
}

func (f *fakeProber) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestHostAddresses(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		count   int
		first   string
		last    string
		wantErr bool
	}{
		{name: "slash 30 has two usable hosts", cidr: "192.168.1.0/30", count: 2, first: "192.168.1.1", last: "192.168.1.2"},
		{name: "slash 24 excludes network and broadcast", cidr: "192.168.1.0/24", count: 254, first: "192.168.1.1", last: "192.168.1.254"},
		{name: "slash 16 capped at 254", cidr: "10.0.0.0/16", count: 254, first: "10.0.0.1", last: "10.0.0.254"},
		{name: "slash 31 keeps both addresses", cidr: "192.168.1.0/31", count: 2, first: "192.168.1.0", last: "192.168.1.1"},
		{name: "slash 32 is a single host", cidr: "192.168.1.7/32", count: 1, first: "192.168.1.7", last: "192.168.1.7"},
		{name: "slash 31 at top of address space", cidr: "255.255.255.254/31", count: 2, first: "255.255.255.254", last: "255.255.255.255"},
		{name: "slash 32 at top of address space", cidr: "255.255.255.255/32", count: 1, first: "255.255.255.255", last: "255.255.255.255"},
		{name: "non-aligned base address", cidr: "192.168.1.57/24", count: 254, first: "192.168.1.1", last: "192.168.1.254"},
		{name: "garbage", cidr: "not-a-subnet", wantErr: true},
		{name: "missing prefix", cidr: "192.168.1.0", wantErr: true},
		{name: "ipv6 rejected", cidr: "fe80::/64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hosts, err := HostAddresses(tt.cidr)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSubnet) {
					t.Fatalf("expected ErrInvalidSubnet, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HostAddresses(%q): %v", tt.cidr, err)
			}
			if len(hosts) != tt.count {
				t.Fatalf("expected %d hosts, got %d", tt.count, len(hosts))
			}
			if hosts[0] != tt.first {
				t.Errorf("first host = %s, want %s", hosts[0], tt.first)
			}
			if hosts[len(hosts)-1] != tt.last {
				t.Errorf("last host = %s, want %s", hosts[len(hosts)-1], tt.last)
			}
		})
	}
}

func TestScanReturnsOnlyRespondingHosts(t *testing.T) {
	prober := &fakeProber{alive: map[string]string{
		"192.168.1.1": "AA:BB:CC:DD:EE:01",
		"192.168.1.2": "", // alive, MAC resolution failed
	}}
	s := New(prober, 8)

	results, err := s.Scan(context.Background(), "192.168.1.0/29")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 responding hosts, got %d", len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].IP < results[j].IP })
	if results[0].MAC != "AA:BB:CC:DD:EE:01" {
		t.Errorf("expected resolved MAC for first host, got %q", results[0].MAC)
	}
	if results[1].MAC != "" {
		t.Errorf("expected empty MAC for second host, got %q", results[1].MAC)
	}

	// All 6 usable hosts of the /29 were probed.
	if got := prober.probeCount(); got != 6 {
		t.Errorf("expected 6 probes, got %d", got)
	}
}

func TestScanInvalidSubnetProbesNothing(t *testing.T) {
	prober := &fakeProber{}
	s := New(prober, 8)

	_, err := s.Scan(context.Background(), "300.1.2.3/24")
	if !errors.Is(err, ErrInvalidSubnet) {
		t.Fatalf("expected ErrInvalidSubnet, got %v", err)
	}
	if prober.probeCount() != 0 {
		t.Errorf("expected no probes for invalid subnet, got %d", prober.probeCount())
	}
}

func TestScanCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &fakeProber{alive: map[string]string{}}
	s := New(prober, 4)

	// Cancellation is not an error; the caller gets what completed.
	results, err := s.Scan(ctx, "10.0.0.0/24")
	if err != nil {
		t.Fatalf("Scan after cancel: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from cancelled scan, got %d", len(results))
	}
}
