package middleware

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP address from the request.
// It checks various headers set by proxies and load-balancers before
// falling back to the remote address.
func GetClientIP(r *http.Request) string {
	xForwardedFor := r.Header.Get("X-Forwarded-For")

	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		ip := strings.TrimSpace(first)

		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))

	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// PublicClientIP returns the client IP when it is a routable public address, or ""
// for loopback, private, link-local and unparsable addresses.
func PublicClientIP(r *http.Request) string {
	raw := GetClientIP(r)
	ip := net.ParseIP(raw)

	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
		return ""
	}

	return raw
}
