package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"terrepro/internal/api"
	"terrepro/internal/config"
	"terrepro/internal/logger"
	"terrepro/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionLoader is the part of the session store the guards need.
type SessionLoader interface {
	Load(ctx context.Context, id string) (session.Snapshot, error)
	Clear(ctx context.Context, id string) error
}

// CSRFStore validates single-use form tokens bound to a session.
type CSRFStore interface {
	ConsumeCSRFToken(ctx context.Context, sessionID, token string) error
}

const (
	msgNotAuthenticated = "Utilisateur non authentifié"
	msgSessionExpired   = "Votre session a expiré, veuillez vous reconnecter"
)

// SessionRequired is the single guard in front of every protected page. It
// loads an immutable session snapshot, or redirects to /login.
func SessionRequired(store SessionLoader, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(session.CookieName)
		if err != nil || sessionID == "" {
			redirectToLogin(c, cfg, msgNotAuthenticated)
			return
		}

		snap, err := store.Load(c.Request.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				logger.Error("Failed to load session", "session_id", sessionID, "error", err)
			}
			redirectToLogin(c, cfg, msgNotAuthenticated)
			return
		}

		if !snap.HasToken() || snap.TokenExpired(time.Now()) {
			if err := store.Clear(c.Request.Context(), snap.ID); err != nil {
				logger.Warn("Failed to clear session", "session_id", snap.ID, "error", err)
			}
			redirectToLogin(c, cfg, msgSessionExpired)
			return
		}

		session.Set(c, snap)
		c.Next()
	}
}

// SessionOptional attaches the snapshot when a valid session exists.
func SessionOptional(store SessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := c.Cookie(session.CookieName); err == nil && sessionID != "" {
			if snap, err := store.Load(c.Request.Context(), sessionID); err == nil && snap.HasToken() && !snap.TokenExpired(time.Now()) {
				session.Set(c, snap)
			}
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context, cfg *config.Config, message string) {
	session.ClearCookie(c, !cfg.IsDevelopment())
	session.SetFlash(c, session.FlashError, message, !cfg.IsDevelopment())
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

// CSRF checks the single-use token on state-changing requests from a
// logged-in session. It must run after SessionRequired.
func CSRF(store CSRFStore, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := c.GetHeader("X-CSRF-Token")
		if token == "" {
			token = c.PostForm("csrf_token")
		}
		if token == "" {
			c.String(http.StatusForbidden, "Jeton CSRF manquant")
			c.Abort()
			return
		}

		snap, ok := session.Current(c)
		if !ok {
			c.String(http.StatusUnauthorized, msgNotAuthenticated)
			c.Abort()
			return
		}

		if err := store.ConsumeCSRFToken(c.Request.Context(), snap.ID, token); err != nil {
			logger.Warn("Rejected CSRF token", "session_id", snap.ID, "path", c.Request.URL.Path, "error", err)
			c.String(http.StatusForbidden, "Jeton CSRF invalide, veuillez recharger la page")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestID tags each page request and propagates the id to API calls.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(api.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, allowedOrigin := range origins {
			if origin != "" && origin == allowedOrigin {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				break
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "same-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		c.Next()
	}
}

func LogRequests() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s %v\n",
			param.TimeStamp.Format("2006/01/02 15:04:05"),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Keys["request_id"],
		)
	})
}

// TrimSpaces trims submitted form values. Passwords are left untouched.
func TrimSpaces() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut {
			if err := c.Request.ParseForm(); err == nil {
				trimValues(c.Request.PostForm)
				trimValues(c.Request.Form)
			}
		}
		c.Next()
	}
}

// trimValues trims in place; Request.Form holds its own copy of the body values.
func trimValues(values map[string][]string) {
	for key, vals := range values {
		if strings.Contains(key, "password") {
			continue
		}
		for i, value := range vals {
			vals[i] = strings.TrimSpace(value)
		}
	}
}
