package probe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseNeighborOutput(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			name: "reachable entry",
			out:  "192.168.1.10 dev eth0 lladdr aa:bb:cc:dd:ee:ff REACHABLE\n",
			want: "AA:BB:CC:DD:EE:FF",
		},
		{
			name: "stale entry still resolves",
			out:  "10.0.0.5 dev wlan0 lladdr 00:1a:2b:3c:4d:5e STALE\n",
			want: "00:1A:2B:3C:4D:5E",
		},
		{
			name: "failed entry has no lladdr",
			out:  "192.168.1.99 dev eth0  FAILED\n",
			want: "",
		},
		{
			name: "empty output",
			out:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseNeighborOutput(tt.out); got != tt.want {
				t.Errorf("parseNeighborOutput = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseARPOutput(t *testing.T) {
	out := "Address                  HWtype  HWaddress           Flags Mask            Iface\n" +
		"192.168.1.10             ether   aa:bb:cc:dd:ee:ff   C                     eth0\n"
	if got := parseARPOutput(out); got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("parseARPOutput = %q, want AA:BB:CC:DD:EE:FF", got)
	}

	if got := parseARPOutput("192.168.1.99 (incomplete)  eth0\n"); got != "" {
		t.Errorf("expected empty MAC for incomplete entry, got %q", got)
	}
}

func TestParseWindowsARPOutput(t *testing.T) {
	out := "Interface: 192.168.1.5 --- 0xb\n" +
		"  Internet Address      Physical Address      Type\n" +
		"  192.168.1.10          aa-bb-cc-dd-ee-ff     dynamic\n"
	if got := parseWindowsARPOutput(out); got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("parseWindowsARPOutput = %q, want AA:BB:CC:DD:EE:FF", got)
	}
}

func TestParseProcARP(t *testing.T) {
	table := "IP address       HW type     Flags       HW address            Mask     Device\n" +
		"192.168.1.10     0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0\n" +
		"192.168.1.20     0x1         0x0         00:00:00:00:00:00     *        eth0\n"

	if got := parseProcARP(table, "192.168.1.10"); got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("parseProcARP = %q, want AA:BB:CC:DD:EE:FF", got)
	}

	// Incomplete (all-zero) entries must not be reported.
	if got := parseProcARP(table, "192.168.1.20"); got != "" {
		t.Errorf("expected empty MAC for incomplete entry, got %q", got)
	}

	if got := parseProcARP(table, "192.168.1.99"); got != "" {
		t.Errorf("expected empty MAC for absent entry, got %q", got)
	}
}

func TestPosixResolverFallback(t *testing.T) {
	// `ip` binary missing, `arp -n` answers.
	r := &posixResolver{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		switch name {
		case "ip":
			return nil, errors.New("exec: not found")
		case "arp":
			return []byte("192.168.1.10  ether  aa:bb:cc:dd:ee:ff  C  eth0\n"), nil
		}
		return nil, errors.New("unexpected command")
	}}

	if got := r.Resolve(context.Background(), "192.168.1.10"); got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Resolve = %q, want AA:BB:CC:DD:EE:FF", got)
	}
}

func TestPingProber(t *testing.T) {
	alive := map[string]bool{"10.0.0.1": true}
	macs := map[string]string{"10.0.0.1": "AA:BB:CC:DD:EE:FF"}

	p := &pingProber{
		timeout: time.Second,
		pinger: pingerFunc(func(ctx context.Context, ip string, timeout time.Duration) bool {
			return alive[ip]
		}),
		resolver: resolverFunc(func(ctx context.Context, ip string) string {
			return macs[ip]
		}),
	}

	got := p.Probe(context.Background(), "10.0.0.1")
	if !got.Alive || got.MAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("expected live host with MAC, got %+v", got)
	}

	// A dead host must not trigger resolution at all.
	p.resolver = resolverFunc(func(ctx context.Context, ip string) string {
		t.Error("resolver called for dead host")
		return ""
	})
	got = p.Probe(context.Background(), "10.0.0.2")
	if got.Alive || got.MAC != "" {
		t.Errorf("expected dead host with no MAC, got %+v", got)
	}
}

type pingerFunc func(ctx context.Context, ip string, timeout time.Duration) bool

func (f pingerFunc) Ping(ctx context.Context, ip string, timeout time.Duration) bool {
	return f(ctx, ip, timeout)
}

type resolverFunc func(ctx context.Context, ip string) string

func (f resolverFunc) Resolve(ctx context.Context, ip string) string {
	return f(ctx, ip)
}
