package router

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/shandysiswandi/webauth/internal/pkg/config"
)

// middlewareIP rewrites RemoteAddr to the client address reported by proxy
// headers, but only when the direct peer is listed in
// app.server.trusted_proxies. Otherwise any caller could choose the address
// the allow-list sees.
func middlewareIP(cfg config.Config) Middleware {
	trusted := parseTrustedProxies(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rip := realIP(r, trusted); rip != "" {
				r.RemoteAddr = rip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseTrustedProxies(cfg config.Config) []*net.IPNet {
	if cfg == nil {
		return nil
	}

	var nets []*net.IPNet
	for _, v := range cfg.GetArray("app.server.trusted_proxies") {
		if !strings.Contains(v, "/") {
			if ip := net.ParseIP(v); ip != nil && ip.To4() != nil {
				v += "/32"
			} else {
				v += "/128"
			}
		}

		_, n, err := net.ParseCIDR(v)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy", "value", v, "error", err)
			continue
		}
		nets = append(nets, n)
	}

	return nets
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func realIP(r *http.Request, trusted []*net.IPNet) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	peerIP := net.ParseIP(peer)
	if peerIP == nil {
		return ""
	}

	if !isTrusted(peerIP, trusted) {
		return peerIP.String()
	}

	var ip string
	if tcip := r.Header.Get("True-Client-IP"); tcip != "" {
		ip = tcip
	} else if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		ip = xrip
	} else if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ = strings.Cut(xff, ",")
	}

	if parsed := net.ParseIP(strings.TrimSpace(ip)); parsed != nil {
		return parsed.String()
	}
	return peerIP.String()
}
