package probe

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// commandRunner abstracts external process invocation for testing.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// systemPinger shells out to the platform ping binary with a single echo
// request. ICMP raw sockets need elevated privileges; the system binary
// is setuid/has the capability everywhere we care about.
type systemPinger struct {
	run commandRunner
}

// Ping sends one echo request bounded by timeout. The process itself is
// killed after timeout plus a grace period in case the binary hangs.
func (p *systemPinger) Ping(ctx context.Context, ip string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout+2*time.Second)
	defer cancel()

	_, err := p.run(ctx, "ping", pingArgs(ip, timeout)...)
	return err == nil
}

// pingArgs builds the platform-specific argument list. Windows takes the
// timeout in milliseconds (-w), POSIX ping in whole seconds (-W).
func pingArgs(ip string, timeout time.Duration) []string {
	if runtime.GOOS == "windows" {
		return []string{"-n", "1", "-w", strconv.Itoa(int(timeout.Milliseconds())), ip}
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", "1", "-W", strconv.Itoa(secs), ip}
}
