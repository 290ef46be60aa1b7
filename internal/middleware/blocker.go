package middleware

import (
	"net/http"
	"sync"
	"time"

	"terrepro/internal/config"
	"terrepro/internal/logger"

	"github.com/gin-gonic/gin"
)

type clientTracker struct {
	errors404    []time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

// Blocker bans clients that probe for pages: 10 not-found answers within
// 5 minutes block the IP for 15 minutes.
type Blocker struct {
	cfg      *config.Config
	mu       sync.Mutex
	trackers map[string]*clientTracker
	now      func() time.Time
}

func NewBlocker(cfg *config.Config) *Blocker {
	return &Blocker{cfg: cfg, trackers: make(map[string]*clientTracker), now: time.Now}
}

func (b *Blocker) blocked(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	tracker, exists := b.trackers[ip]
	return exists && b.now().Before(tracker.blockedUntil)
}

func (b *Blocker) record404(ip string) {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	tracker, exists := b.trackers[ip]
	if !exists {
		tracker = &clientTracker{}
		b.trackers[ip] = tracker
	}
	tracker.lastSeen = now

	cutoff := now.Add(-5 * time.Minute)
	recent := tracker.errors404[:0]
	for _, t := range tracker.errors404 {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	tracker.errors404 = append(recent, now)

	if len(tracker.errors404) >= 10 {
		tracker.blockedUntil = now.Add(15 * time.Minute)
		tracker.errors404 = nil
		logger.Warn("Blocked client after repeated 404s", "ip", ip, "until", tracker.blockedUntil.Format(time.RFC3339))
	}

	for trackerIP, t := range b.trackers {
		if now.Sub(t.lastSeen) > 30*time.Minute && now.After(t.blockedUntil) {
			delete(b.trackers, trackerIP)
		}
	}
}

// Guard rejects blocked clients before any other work is done.
func (b *Blocker) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if b.cfg.IsDevelopment() {
			c.Next()
			return
		}
		if b.blocked(c.ClientIP()) {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":   "Accès bloqué - TerrePro",
				"Message": "Votre adresse a été temporairement bloquée suite à un trop grand nombre de requêtes invalides.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Track counts not-found answers per client.
func (b *Blocker) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if b.cfg.IsDevelopment() {
			return
		}
		if c.Writer.Status() == http.StatusNotFound {
			b.record404(c.ClientIP())
		}
	}
}
