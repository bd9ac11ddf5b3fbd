package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

// trustedProxies holds the peers whose forwarding headers are honoured.
type trustedProxies []netip.Prefix

// parseTrustedProxies reads app.server.trusted_proxies. Entries are single
// IPs or CIDR ranges; invalid entries are skipped.
func parseTrustedProxies(cfg config.Config) trustedProxies {
	var out trustedProxies
	for _, raw := range cfg.GetArray("app.server.trusted_proxies") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(raw); err == nil {
			a = a.Unmap()
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("ignoring invalid trusted proxy", "value", raw)
	}
	return out
}

func (tp trustedProxies) contains(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range tp {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// middlewareIP rewrites RemoteAddr to the bare client IP so later middleware
// (rate limiting, logging) can key on it. Forwarding headers count only when
// the socket peer is a trusted proxy.
func middlewareIP(trusted trustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rip := realIP(r, trusted); rip != "" {
				r.RemoteAddr = rip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func realIP(r *http.Request, trusted trustedProxies) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if net.ParseIP(peer) == nil {
		return ""
	}
	if !trusted.contains(peer) {
		return peer
	}

	for _, h := range []string{"True-Client-IP", "X-Real-IP"} {
		if ip := strings.TrimSpace(r.Header.Get(h)); net.ParseIP(ip) != nil {
			return ip
		}
	}

	// Walk right to left; the first hop not added by a trusted proxy is the client.
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := strings.TrimSpace(hops[i])
		if net.ParseIP(ip) == nil {
			break
		}
		if !trusted.contains(ip) {
			return ip
		}
	}

	return peer
}
