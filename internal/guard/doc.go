// Package guard is the admission control for user-supplied URLs. It turns an
// untrusted string into a URL that is safe to fetch from a server process.
//
// # Components
//
//   - IsBlocked classifies a single IP address against a fixed, process-wide
//     list of private, loopback, link-local, multicast and reserved ranges.
//     Unparseable addresses are blocked.
//   - HostResolver maps a hostname to its IPv4 addresses.
//   - Validator runs the ordered admission checks and returns a Verdict.
//   - DialControl optionally re-checks the destination at connect time.
//
// # Known limitations
//
// Two behaviours are kept deliberately and are visible in logs:
//
//   - A DNS failure does not reject the URL. The validator logs a warning and
//     accepts it, so a hostname that cannot be resolved at validation time
//     is still fetched. Enable the strict dialer to refuse blocked
//     destinations at connect time.
//   - IPv6 lookups are attempted when IPv4 lookup fails, but IPv6 answers are
//     never classified.
//
// # Usage
//
//	v := guard.NewValidator(guard.WithLogger(logger))
//	verdict := v.Validate(ctx, raw)
//	if !verdict.Accepted() {
//	    return verdict.Err() // a guard.Reason
//	}
//	u, _ := verdict.URL()
package guard
