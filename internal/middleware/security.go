package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/serenify-journal/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerReferrerPolicy          = "Referrer-Policy"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// contentSecurityPolicy lets pages load the chart library from jsDelivr and
// entry photos from Cloudinary.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https://res.cloudinary.com; " +
	"connect-src 'self' ws: wss:"

// SecurityHeaders sets security-related response headers. HSTS is only sent
// when hsts is true, i.e. behind TLS.
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(headerXContentTypeOptions, "nosniff")
			w.Header().Set(headerXFrameOptions, "DENY")
			w.Header().Set(headerReferrerPolicy, "same-origin")
			w.Header().Set(headerContentSecurityPolicy, contentSecurityPolicy)
			if hsts {
				w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HostCheck returns 403 when r.Host does not match allowedHost (e.g. journal.example.com).
// allowedHost should be the bare hostname without scheme or port.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	globalRateLimitRPS   = 5
	globalRateLimitBurst = 20

	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 2

	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// LimiterRegistry hands out one token bucket per key (client IP).
type LimiterRegistry struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func NewLimiterRegistry(limit rate.Limit, burst int) *LimiterRegistry {
	return &LimiterRegistry{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// NewGlobalLimiter allows each IP 5 req/s, burst 20.
func NewGlobalLimiter() *LimiterRegistry {
	return NewLimiterRegistry(rate.Limit(globalRateLimitRPS), globalRateLimitBurst)
}

// NewLoginLimiter allows each IP one credential check per 5s, burst 2.
func NewLoginLimiter() *LimiterRegistry {
	return NewLimiterRegistry(rate.Every(loginRateLimitEvery), loginRateLimitBurst)
}

func (l *LimiterRegistry) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = l.now()
	l.mu.Unlock()
	return e.limiter.Allow()
}

// Prune drops limiters idle for longer than ttl.
func (l *LimiterRegistry) Prune(ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, e := range l.entries {
		if now.Sub(e.lastUse) > ttl {
			delete(l.entries, key)
		}
	}
}

func (l *LimiterRegistry) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// StartCleanup prunes idle limiters until ctx is done.
func (l *LimiterRegistry) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Prune(limiterTTL)
			}
		}
	}()
}

// RateLimit rejects requests over the per-IP limit with 429.
func RateLimit(reg *LimiterRegistry, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !reg.Allow(clientip.RealClientIP(r)) {
				tooManyRequests(w, r, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginPaths are the form posts that check a password.
var LoginPaths = map[string]bool{
	"/":                true,
	"/signup":          true,
	"/verify_password": true,
}

// LoginRateLimit applies the stricter limit to credential-checking POSTs only.
// Use after the global limit.
func LoginRateLimit(reg *LimiterRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !LoginPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !reg.Allow(clientip.RealClientIP(r)) {
				tooManyRequests(w, r, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Retry-After", "5")
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
		return
	}
	http.Error(w, message, http.StatusTooManyRequests)
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → global limit → login limit.
func ProductionSecurity(allowedHost string, global, login *LimiterRegistry) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders(true),
		HostCheck(allowedHost),
		RateLimit(global, "Too many requests. Please slow down."),
		LoginRateLimit(login),
	}
}
