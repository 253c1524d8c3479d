package auth

import (
	"net"
	"net/http"
	"strings"
)

// ClientKey identifies the caller for throttling: the first X-Forwarded-For
// address when present, otherwise the transport peer host.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
