package guard

import "net/netip"

// blockedRanges lists the networks a fetch must never reach: the three
// RFC 1918 private ranges, link-local, loopback, multicast and reserved.
var blockedRanges = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"127.0.0.0/8",
	"224.0.0.0/4",
	"240.0.0.0/4",
}

// blockedPrefixes is parsed once from blockedRanges and never modified.
var blockedPrefixes []netip.Prefix

func init() {
	blockedPrefixes = make([]netip.Prefix, 0, len(blockedRanges))
	for _, cidr := range blockedRanges {
		blockedPrefixes = append(blockedPrefixes, netip.MustParsePrefix(cidr))
	}
}

// BlockedRanges returns a copy of the blocked CIDR ranges.
func BlockedRanges() []string {
	out := make([]string, len(blockedRanges))
	copy(out, blockedRanges)
	return out
}

// IsBlocked reports whether ip falls in a blocked range. An address that
// does not parse is blocked. IPv4-mapped IPv6 addresses are classified as
// the IPv4 address they carry; other IPv6 addresses are never in a blocked
// range.
func IsBlocked(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	return IsBlockedAddr(addr)
}

// IsBlockedAddr is IsBlocked for an already parsed address.
func IsBlockedAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.Unmap()
	for _, prefix := range blockedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
