package guard

import "log/slog"

// Reason is why a URL was rejected. Each reason maps to exactly one
// caller-visible message; nothing else about a rejection is ever shown to
// a client.
//
// Reason implements error so a rejection can travel through the analysis
// pipeline and be recovered with errors.As at the API boundary. Error wins
// over String in fmt verbs, so %s and %v print the client message. Logs and
// metrics labels use String; a Reason passed to slog as an attribute value
// logs the identifier through LogValue.
type Reason int

const (
	// ReasonNone marks an accepted verdict.
	ReasonNone Reason = iota

	// ReasonEmpty is returned for an empty input string.
	ReasonEmpty

	// ReasonTooLong is returned for input longer than MaxURLLength.
	ReasonTooLong

	// ReasonMalformedURL is returned when the input does not parse as a URL.
	ReasonMalformedURL

	// ReasonSchemeNotAllowed is returned for any scheme other than http or https.
	ReasonSchemeNotAllowed

	// ReasonNoHostname is returned when the URL has no host.
	ReasonNoHostname

	// ReasonLocalhostBlocked is returned for localhost spellings.
	ReasonLocalhostBlocked

	// ReasonPrivateIPBlocked is returned for a literal IP in a blocked range.
	ReasonPrivateIPBlocked

	// ReasonInvalidHostnameFormat is returned when the hostname is not a valid FQDN.
	ReasonInvalidHostnameFormat

	// ReasonResolvedToPrivateIP is returned when DNS yields a blocked IPv4 address.
	ReasonResolvedToPrivateIP
)

// reasonMessages holds the caller-visible message of each reason.
var reasonMessages = map[Reason]string{
	ReasonEmpty:                 "URL is required and must be a string",
	ReasonTooLong:               "URL is too long (max 2048 characters)",
	ReasonMalformedURL:          "Invalid URL format",
	ReasonSchemeNotAllowed:      "Only HTTP and HTTPS protocols are allowed",
	ReasonNoHostname:            "Invalid hostname format",
	ReasonLocalhostBlocked:      "Localhost and local IPs are not allowed",
	ReasonPrivateIPBlocked:      "Private/internal IP addresses are not allowed",
	ReasonInvalidHostnameFormat: "Invalid hostname format",
	ReasonResolvedToPrivateIP:   "Resolved to private/internal IP address",
}

// String returns the reason identifier, for logs and metrics labels.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEmpty:
		return "empty"
	case ReasonTooLong:
		return "too_long"
	case ReasonMalformedURL:
		return "malformed_url"
	case ReasonSchemeNotAllowed:
		return "scheme_not_allowed"
	case ReasonNoHostname:
		return "no_hostname"
	case ReasonLocalhostBlocked:
		return "localhost_blocked"
	case ReasonPrivateIPBlocked:
		return "private_ip_blocked"
	case ReasonInvalidHostnameFormat:
		return "invalid_hostname_format"
	case ReasonResolvedToPrivateIP:
		return "resolved_to_private_ip"
	default:
		return "unknown"
	}
}

// Message returns the caller-visible message.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Invalid URL"
}

// LogValue implements slog.LogValuer with the reason identifier.
func (r Reason) LogValue() slog.Value {
	return slog.StringValue(r.String())
}

// Error implements error with the caller-visible message.
func (r Reason) Error() string {
	return r.Message()
}
