package guard

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedDestination is returned by a strict dialer when the address it
// is about to connect to is in a blocked range.
var ErrBlockedDestination = errors.New("connection to blocked address refused")

// DialControl rejects connections to blocked IPv4 addresses at connect time.
// It is meant for net.Dialer.Control and closes the gap between validation
// and fetch: a hostname that re-resolves to a private address, or a redirect
// to one, is refused here.
func DialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, address)
	}
	if IsBlockedAddr(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, addr)
	}
	return nil
}

// NewDialer returns a net.Dialer with the given timeout. When strict is true
// the dialer refuses blocked destinations through DialControl.
func NewDialer(timeout time.Duration, strict bool) *net.Dialer {
	d := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	if strict {
		d.Control = DialControl
	}
	return d
}
