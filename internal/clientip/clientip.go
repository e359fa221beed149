// Package clientip resolves the real client IP from proxy headers and checks
// it against an exam's allow-list. Resolution is a pure function over an
// explicit header map so it stays independent of any framework request type.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Resolve picks the client IP from a header bag using the trusted proxy
// chain, in order of preference:
//
//	x-client-ip → first hop of x-forwarded-for → x-real-ip → remoteAddr
//
// The IPv6-mapped localhost forms are normalized to 127.0.0.1 so local
// clients compare equal regardless of stack.
func Resolve(header http.Header, remoteAddr string) string {
	ip := header.Get("X-Client-IP")

	if ip == "" {
		if fwd := header.Get("X-Forwarded-For"); fwd != "" {
			// First entry is the originating client; later hops are proxies.
			ip = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		}
	}

	if ip == "" {
		ip = header.Get("X-Real-IP")
	}

	if ip == "" {
		host, _, err := net.SplitHostPort(remoteAddr)
		if err != nil {
			host = remoteAddr
		}
		ip = host
	}

	return normalize(strings.TrimSpace(ip))
}

// Allowed reports whether ip matches an entry of the comma-separated
// allow-list. An empty allow-list permits everything.
func Allowed(ip, allowList string) bool {
	if strings.TrimSpace(allowList) == "" {
		return true
	}
	for _, entry := range strings.Split(allowList, ",") {
		if normalize(strings.TrimSpace(entry)) == ip {
			return true
		}
	}
	return false
}

func normalize(ip string) string {
	switch ip {
	case "::1", "::ffff:127.0.0.1":
		return "127.0.0.1"
	}
	return ip
}
