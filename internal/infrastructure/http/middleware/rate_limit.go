package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/rezkam/central/internal/clock"
	"github.com/rezkam/central/internal/infrastructure/http/response"
)

// RateLimitConfig configures per-client token buckets.
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate. Zero or less disables limiting.
	RequestsPerSecond float64
	// Burst is the bucket size. Values below 1 become 1.
	Burst int
	// MaxClients bounds how many client buckets are remembered; the least
	// recently seen client is forgotten first.
	MaxClients int
	// Clock supplies the instant tokens are taken at. Nil means the system clock.
	Clock clock.Clock
}

// DefaultMaxClients is used when RateLimitConfig.MaxClients is not positive.
const DefaultMaxClients = 10_000

type limiterSet struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	clients *lru.Cache[string, *rate.Limiter]
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.clients.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
	s.clients.Add(key, l)
	return l
}

// RateLimit answers 429 with a Retry-After header once a client exhausts
// its bucket. Clients are keyed by remote IP, so it belongs after chi's
// RealIP middleware when running behind a proxy.
func RateLimit(cfg RateLimitConfig) (func(http.Handler) http.Handler, error) {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = DefaultMaxClients
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}

	clients, err := lru.New[string, *rate.Limiter](cfg.MaxClients)
	if err != nil {
		return nil, fmt.Errorf("failed to create client cache: %w", err)
	}
	set := &limiterSet{cfg: cfg, clients: clients}
	retryAfter := strconv.Itoa(int(math.Ceil(1 / cfg.RequestsPerSecond)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !set.get(key).AllowN(cfg.Clock.Now(), 1) {
				slog.WarnContext(r.Context(), "rate limit exceeded", "client", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", retryAfter)
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
