package middleware

import (
	"net/http"
	"sync"
	"time"

	"terrepro/internal/config"
	"terrepro/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one token bucket per client IP and forgets idle clients.
type limiterSet struct {
	mu      sync.Mutex
	clients map[string]*rateLimiter
	every   time.Duration
	burst   int
	idle    time.Duration
}

func newLimiterSet(every time.Duration, burst int, idle time.Duration) *limiterSet {
	return &limiterSet{
		clients: make(map[string]*rateLimiter),
		every:   every,
		burst:   burst,
		idle:    idle,
	}
}

func (s *limiterSet) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, exists := s.clients[ip]
	if !exists {
		client = &rateLimiter{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.clients[ip] = client
	}
	client.lastSeen = now

	for clientIP, c := range s.clients {
		if now.Sub(c.lastSeen) > s.idle {
			delete(s.clients, clientIP)
		}
	}

	return client.limiter.AllowN(now, 1)
}

// RateLimit caps every client at 20 requests per second.
func RateLimit(cfg *config.Config) gin.HandlerFunc {
	limits := newLimiterSet(time.Second/20, 20, 10*time.Minute)
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}
		if !limits.allow(c.ClientIP(), time.Now()) {
			c.String(http.StatusTooManyRequests, "Trop de requêtes, veuillez patienter")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimit slows down credential guessing on login and registration.
func AuthRateLimit(cfg *config.Config) gin.HandlerFunc {
	limits := newLimiterSet(time.Minute, 5, 30*time.Minute)
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}
		if !limits.allow(c.ClientIP(), time.Now()) {
			logger.Warn("Authentication rate limit exceeded", "path", c.Request.URL.Path)
			c.HTML(http.StatusTooManyRequests, "error.html", gin.H{
				"Title":   "Trop de tentatives - TerrePro",
				"Message": "Trop de tentatives de connexion. Veuillez réessayer dans quelques minutes.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
