package handlers

import (
	"errors"
	"net/http"

	"terrepro/internal/api"
	"terrepro/internal/logger"
	"terrepro/internal/session"

	"github.com/gin-gonic/gin"
)

const msgSessionExpired = "Votre session a expiré, veuillez vous reconnecter"

// render adds the layout data every page needs: the pending flash, the
// logged-in user and a fresh CSRF token for the page's forms.
func (h *Handlers) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if flash := session.PopFlash(c, !h.cfg.IsDevelopment()); flash != nil {
		data["Flash"] = flash
	}

	if snap, ok := session.Current(c); ok {
		data["User"] = snap.User
		token, err := h.sessions.IssueCSRFToken(c.Request.Context(), snap.ID)
		if err != nil {
			logger.Error("Failed to issue CSRF token", "session_id", snap.ID, "error", err)
		}
		data["CSRFToken"] = token
	}

	c.HTML(status, name, data)
}

// token returns the bearer token of the guarded request.
func token(c *gin.Context) string {
	snap, _ := session.Current(c)
	return snap.Token
}

// apiFailure applies the shared policy for a failed gateway call. It returns
// the message to show, or handled=true when the response was already written
// (cancelled request, rejected token).
func (h *Handlers) apiFailure(c *gin.Context, err error, fallback string) (message string, handled bool) {
	switch {
	case api.IsCanceled(err):
		logger.Debug("Request cancelled by client", "path", c.Request.URL.Path)
		c.Abort()
		return "", true
	case api.IsUnauthorized(err), errors.Is(err, api.ErrNoToken):
		if snap, ok := session.Current(c); ok {
			if clearErr := h.sessions.Clear(c.Request.Context(), snap.ID); clearErr != nil {
				logger.Warn("Failed to clear session", "session_id", snap.ID, "error", clearErr)
			}
		}
		session.ClearCookie(c, !h.cfg.IsDevelopment())
		session.SetFlash(c, session.FlashError, msgSessionExpired, !h.cfg.IsDevelopment())
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return "", true
	}

	logger.Warn("API call failed", "path", c.Request.URL.Path, "request_id", c.GetString("request_id"), "error", err)
	return api.UserMessage(err, fallback), false
}

// failureStatus is the status of a page re-rendered after a failed call.
func failureStatus(err error) int {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

// fieldErrors keeps the first validation message per form field.
func fieldErrors(err error) map[string]string {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(apiErr.Fields))
	for field, msgs := range apiErr.Fields {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}

func (h *Handlers) success(c *gin.Context, message, location string) {
	session.SetFlash(c, session.FlashSuccess, message, !h.cfg.IsDevelopment())
	c.Redirect(http.StatusFound, location)
}
