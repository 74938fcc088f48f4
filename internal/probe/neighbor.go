package probe

import (
	"context"
	"os"
	"regexp"
	"strings"

	"assetwatch/internal/domain"
)

var (
	// lladdrRe matches the hardware address token in `ip neigh` output:
	// "192.168.1.10 dev eth0 lladdr aa:bb:cc:dd:ee:ff REACHABLE"
	lladdrRe = regexp.MustCompile(`lladdr\s+([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})`)
	// colonMACRe matches a bare colon-separated address, as printed by `arp -n`
	colonMACRe = regexp.MustCompile(`([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})`)
	// dashMACRe matches the dash-separated form in Windows `arp -a` output
	dashMACRe = regexp.MustCompile(`([0-9a-fA-F]{2}(?:-[0-9a-fA-F]{2}){5})`)
)

const incompleteMAC = "00:00:00:00:00:00"

// posixResolver reads the kernel neighbor table via `ip neigh`, falling
// back to `arp -n` and finally /proc/net/arp on systems without iproute2.
type posixResolver struct {
	run commandRunner
}

func (r *posixResolver) Resolve(ctx context.Context, ip string) string {
	if out, err := r.run(ctx, "ip", "neigh", "show", ip); err == nil {
		if mac := parseNeighborOutput(string(out)); mac != "" {
			return mac
		}
	}

	if out, err := r.run(ctx, "arp", "-n", ip); err == nil {
		if mac := parseARPOutput(string(out)); mac != "" {
			return mac
		}
	}

	// Last resort: the proc table is always readable even where the
	// arp binary is missing (minimal containers).
	if data, err := os.ReadFile("/proc/net/arp"); err == nil {
		return parseProcARP(string(data), ip)
	}

	return ""
}

// windowsResolver queries the ARP table via `arp -a`, which prints
// hardware addresses dash-separated.
type windowsResolver struct {
	run commandRunner
}

func (r *windowsResolver) Resolve(ctx context.Context, ip string) string {
	out, err := r.run(ctx, "arp", "-a", ip)
	if err != nil {
		return ""
	}
	return parseWindowsARPOutput(string(out))
}

// parseNeighborOutput extracts the lladdr token from `ip neigh show` output.
func parseNeighborOutput(out string) string {
	m := lladdrRe.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return normalize(m[1])
}

// parseARPOutput extracts a hardware address from `arp -n` output.
func parseARPOutput(out string) string {
	m := colonMACRe.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return normalize(m[1])
}

// parseWindowsARPOutput extracts the dash-separated address from
// Windows `arp -a` output.
func parseWindowsARPOutput(out string) string {
	m := dashMACRe.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return normalize(m[1])
}

// parseProcARP scans /proc/net/arp for the row belonging to ip. Column
// four holds the hardware address; all-zero entries are incomplete.
func parseProcARP(table, ip string) string {
	lines := strings.Split(table, "\n")
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) >= 4 && fields[0] == ip {
			return normalize(fields[3])
		}
	}
	return ""
}

// normalize converts a matched token to canonical form, dropping
// incomplete (all-zero) entries.
func normalize(raw string) string {
	mac, err := domain.NormalizeMAC(raw)
	if err != nil || mac == incompleteMAC {
		return ""
	}
	return mac
}
