package guard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

var (
	// ErrResolution is returned when a hostname has neither A nor AAAA records
	// or the lookup failed.
	ErrResolution = errors.New("hostname resolution failed")

	// ErrIPv6Only is returned when a hostname has AAAA records but no A
	// records. IPv6 results are not classified.
	ErrIPv6Only = errors.New("hostname resolved to IPv6 addresses only")
)

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// HostResolver maps hostnames to the IPv4 addresses the validator
// classifies.
type HostResolver struct {
	resolver Resolver
}

// NewHostResolver wraps r. A nil r uses net.DefaultResolver.
func NewHostResolver(r Resolver) *HostResolver {
	if r == nil {
		r = net.DefaultResolver
	}
	return &HostResolver{resolver: r}
}

// ResolveIPv4 returns the IPv4 addresses of host.
//
// When the IPv4 lookup fails an IPv6 lookup is attempted. Its addresses are
// never returned: a successful IPv6 lookup yields ErrIPv6Only, a failed one
// yields ErrResolution. Neither error is fatal to validation.
func (h *HostResolver) ResolveIPv4(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := h.resolver.LookupNetIP(ctx, "ip4", host)
	if err == nil && len(addrs) > 0 {
		v4 := make([]netip.Addr, 0, len(addrs))
		for _, a := range addrs {
			v4 = append(v4, a.Unmap())
		}
		return v4, nil
	}

	if _, err6 := h.resolver.LookupNetIP(ctx, "ip6", host); err6 == nil {
		return nil, fmt.Errorf("%w: %s", ErrIPv6Only, host)
	}

	if err == nil {
		err = errors.New("no addresses returned")
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrResolution, host, err)
}
