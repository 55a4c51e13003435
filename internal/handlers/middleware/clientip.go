package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies are networks of reverse proxies allowed to set X-Forwarded-For.
// Nil value trusts nobody: the client is always the remote address of the connection.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts CIDRs ('10.0.0.0/8') and single addresses ('127.0.0.1')
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(values))

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if strings.Contains(value, "/") {
			prefix, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q. Err: %w", value, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q. Err: %w", value, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return proxies, nil
}

func (tp TrustedProxies) trusts(raw string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range tp {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP is the remote host of the connection. When the remote host is a trusted proxy,
// X-Forwarded-For is walked from the right and the first untrusted hop is the client:
// entries on the left are written by the client itself and can't be relied on.
func (tp TrustedProxies) ClientIP(r *http.Request) string {
	remote := remoteHost(r)
	if len(tp) == 0 || !tp.trusts(remote) {
		return remote
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			// Garbage in the chain: stop at the last known hop
			return remote
		}
		if !tp.trusts(hop) {
			return hop
		}
		remote = hop
	}

	return remote
}

// ClientIP is the remote host of the connection, X-Forwarded-For is ignored
func ClientIP(r *http.Request) string {
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
