// Package clientip derives the key the rate limiters count requests under.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client address of r without its port. It reads
// r.RemoteAddr only; chi's RealIP middleware, when mounted ahead of the
// limiters, has already replaced that with the forwarded address, which
// arrives without a port. IPs are returned in canonical form so "::1" and
// "[::1]:443" count against the same limiter.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	return addr
}
