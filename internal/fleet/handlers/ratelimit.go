package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	rateLimitKeyPrefix = "fleet:ratelimit:"
	rateLimitWindow    = time.Second
)

// RateCounter is the subset of the Redis client the limiter needs.
type RateCounter interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RateLimiter caps requests per second per client IP using a Redis counter
// shared by every replica.
type RateLimiter struct {
	counter        RateCounter
	limit          int
	trustedProxies []*net.IPNet
	logger         *zap.Logger
}

// ParseTrustedProxies parses the CIDRs of proxies allowed to set X-Real-IP.
func ParseTrustedProxies(cidrs []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// NewRateLimiter builds a limiter allowing limitPerSec requests per client IP.
// X-Real-IP is honoured only on connections from trustedProxies.
func NewRateLimiter(counter RateCounter, limitPerSec int, trustedProxies []*net.IPNet, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		counter:        counter,
		limit:          limitPerSec,
		trustedProxies: trustedProxies,
		logger:         logger.Named("rate_limiter"),
	}
}

// Middleware rejects requests over the limit with 429 and fails closed with
// 503 when Redis is unreachable.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		key := rateLimitKeyPrefix + l.clientIP(r)
		count, err := l.hit(ctx, key)
		if err != nil {
			l.logger.Error("Rate limit counter unavailable", zap.String("key", key), zap.Error(err))
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		if count > int64(l.limit) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// hit counts one request. EXPIRE NX runs in the same transaction as INCR so
// every counter carries a TTL, even one left without it by an earlier failure.
func (l *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.counter.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rateLimitWindow)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if forwarded := r.Header.Get("X-Real-IP"); forwarded != "" && l.trusted(host) {
		if ip := net.ParseIP(forwarded); ip != nil {
			return ip.String()
		}
	}
	return host
}

func (l *RateLimiter) trusted(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range l.trustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
