// Package clientip resolves the originating client address from a request.
//
// Precedence, lowest to highest: the transport-layer peer address, the first
// comma-separated token of X-Forwarded-For, then X-Real-IP. X-Real-IP winning
// over X-Forwarded-For matches the backend this service replaces and is
// relied on by existing reverse-proxy configs; do not reorder.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

const (
	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
)

// Resolve applies the header precedence to a peer address and header set.
func Resolve(remoteAddr string, header http.Header) string {
	ip := peerAddress(remoteAddr)

	if forwarded := header.Get(headerForwardedFor); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			ip = first
		}
	}

	if real := strings.TrimSpace(header.Get(headerRealIP)); real != "" {
		ip = real
	}

	return ip
}

// FromRequest resolves the client IP for an inbound request.
func FromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return Resolve(r.RemoteAddr, r.Header)
}

func peerAddress(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
