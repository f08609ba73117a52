package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

type clientContextKey struct{}

var ClientContextKey = clientContextKey{}

// ClientAddress resolves the caller's network address once per request.
// X-Forwarded-For is only honored when the direct peer is a trusted proxy;
// otherwise the header is attacker controlled and ignored.
type ClientAddress struct {
	trusted []*net.IPNet
}

// NewClientAddress accepts single addresses ("10.0.0.1") or CIDR ranges
// ("10.0.0.0/8"). Entries that parse as neither are logged and skipped.
func NewClientAddress(trustedProxies []string) *ClientAddress {
	c := &ClientAddress{}

	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil {
				bits := 8 * len(ip.To16())
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				c.trusted = append(c.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
				continue
			}
		}

		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			slog.Warn("Ignoring invalid trusted proxy", slog.String("entry", entry))
			continue
		}

		c.trusted = append(c.trusted, network)
	}

	return c
}

func (c *ClientAddress) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}

	for _, network := range c.trusted {
		if network.Contains(ip) {
			return true
		}
	}

	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Resolve walks X-Forwarded-For from the right while hops are trusted proxies
// and returns the first untrusted address.
func (c *ClientAddress) Resolve(r *http.Request) string {
	addr := remoteHost(r)
	if !c.isTrusted(addr) {
		return addr
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}

		addr = hop
		if !c.isTrusted(hop) {
			break
		}
	}

	return addr
}

func (c *ClientAddress) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ClientContextKey, c.Resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientKey identifies the caller for rate limiting. It is always the client
// address, never the guest session, which any caller can mint on demand.
func ClientKey(r *http.Request) string {
	if addr, ok := r.Context().Value(ClientContextKey).(string); ok && addr != "" {
		return "ip:" + addr
	}

	return "ip:" + remoteHost(r)
}
