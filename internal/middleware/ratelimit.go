package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepEvery bounds how long an idle client's limiter is retained.
const sweepEvery = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	p := &limiterPool{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
	go p.sweep()
	return p
}

func (p *limiterPool) allow(ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (p *limiterPool) sweep() {
	for {
		time.Sleep(sweepEvery)
		p.mu.Lock()
		for ip, c := range p.clients {
			if time.Since(c.lastSeen) > sweepEvery {
				delete(p.clients, ip)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimit returns middleware limiting each client IP to rps requests per
// second with the given burst. Applied to the unauthenticated auth routes,
// which are the only mutable surface reachable without a token.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	pool := newLimiterPool(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !pool.allow(ip) {
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
