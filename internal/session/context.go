package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	CookieName      = "session_id"
	flashCookieName = "flash"
	contextKey      = "session"
)

// Set attaches the snapshot to the request. Handlers read it with Current.
func Set(c *gin.Context, snap Snapshot) {
	c.Set(contextKey, snap)
}

func Current(c *gin.Context) (Snapshot, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Snapshot{}, false
	}
	snap, ok := v.(Snapshot)
	return snap, ok
}

func SetCookie(c *gin.Context, snap Snapshot, secure bool) {
	maxAge := int(time.Until(snap.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, snap.ID, maxAge, "/", "", secure, true)
}

func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

func SetFlash(c *gin.Context, kind FlashKind, message string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, string(kind)+"|"+message, 60, "/", "", secure, true)
}

// PopFlash returns the pending flash and clears it.
func PopFlash(c *gin.Context, secure bool) *Flash {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, "", -1, "/", "", secure, true)

	kind, message, found := strings.Cut(raw, "|")
	if !found || message == "" {
		return nil
	}
	switch FlashKind(kind) {
	case FlashSuccess, FlashError:
		return &Flash{Kind: FlashKind(kind), Message: message}
	}
	return nil
}
