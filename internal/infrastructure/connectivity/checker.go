// Package connectivity provides the online/offline probe consulted before
// any provider dispatch.
package connectivity

import (
	"context"
	"net"
	"time"

	"shopmate/internal/ports"
)

// DialChecker reports connectivity by attempting a short TCP dial to a
// well-known endpoint.
type DialChecker struct {
	addr    string
	timeout time.Duration
}

// NewDialChecker builds a checker. Empty addr probes a public DNS
// endpoint.
func NewDialChecker(addr string, timeout time.Duration) *DialChecker {
	if addr == "" {
		addr = "1.1.1.1:443"
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DialChecker{addr: addr, timeout: timeout}
}

// Online implements ports.Connectivity.
func (c *DialChecker) Online(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

var _ ports.Connectivity = (*DialChecker)(nil)
