// Package identity derives the pseudo-identity used to key CSRF and rate
// limit state. IP plus user agent is a weak identity: clients behind one NAT
// with the same browser share a key, and a browser update changes it.
// Forwarding headers are client supplied, so they are read only when the
// service runs behind a proxy that overwrites them. Otherwise any client
// could rotate X-Forwarded-For to get a fresh rate limit and CSRF key.
package identity

import (
	"encoding/base64"
	"net"
	"net/url"
	"strings"
)

// Unknown replaces a missing IP or user agent.
const Unknown = "unknown"

// SessionKey combines ip and userAgent into a deterministic, reversible key.
func SessionKey(ip, userAgent string) string {
	if ip == "" {
		ip = Unknown
	}
	if userAgent == "" {
		userAgent = Unknown
	}
	return base64.StdEncoding.EncodeToString([]byte(ip + "-" + userAgent))
}

// HeaderGetter is satisfied by http.Header.
type HeaderGetter interface {
	Get(key string) string
}

// ClientIP returns the socket peer. With trustProxy it prefers the first
// X-Forwarded-For hop, then X-Real-IP. It returns Unknown when none is
// available.
func ClientIP(headers HeaderGetter, remoteAddr string, trustProxy bool) string {
	if trustProxy {
		if forwarded := headers.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}

		if realIP := strings.TrimSpace(headers.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
			return host
		}
		return remoteAddr
	}

	return Unknown
}

// NormalizeOrigin reduces an Origin or Referer value to scheme://host[:port].
// It returns "" for values that carry no usable origin, including "null".
func NormalizeOrigin(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" {
		return ""
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}
