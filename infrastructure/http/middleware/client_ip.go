package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

// TrustedProxies is the set of peers whose X-Forwarded-For and X-Real-IP
// headers are believed. The zero value trusts nobody.
type TrustedProxies struct {
	nets []*net.IPNet
}

// ParseTrustedProxies accepts bare IPs and CIDRs.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	p := &TrustedProxies{}
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		p.nets = append(p.nets, ipNet)
	}
	return p, nil
}

func (p *TrustedProxies) trusts(addr string) bool {
	if p == nil {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve returns the client address of r. Forwarding headers count only
// when the peer is a trusted proxy; X-Forwarded-For is read right to left
// and the first hop outside the trusted set wins.
func (p *TrustedProxies) Resolve(r *http.Request) string {
	peer := peerIP(r)
	if !p.trusts(peer) {
		return peer
	}

	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(value, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if net.ParseIP(hops[i]) == nil {
			return peer
		}
		if !p.trusts(hops[i]) || i == 0 {
			return hops[i]
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return peer
}

// ClientIPMiddleware resolves the client address once per request and
// stores it in the request context for rate limiting and logging.
func ClientIPMiddleware(proxies *TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithClientIP(r.Context(), proxies.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the address stored by ClientIPMiddleware, or the peer
// address when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip := logger.ClientIP(r.Context()); ip != "" {
		return ip
	}
	return peerIP(r)
}

func peerIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
