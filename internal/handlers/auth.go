package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"terrepro/internal/api"
	"terrepro/internal/logger"
	"terrepro/internal/models"
	"terrepro/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	msgAuthFailed     = "Une erreur s'est produite"
	msgSessionFailure = "Impossible d'ouvrir la session, veuillez réessayer"
)

func (h *Handlers) handleLoginPage(c *gin.Context) {
	if _, ok := session.Current(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Connexion - TerrePro",
	})
}

func (h *Handlers) handleLogin(c *gin.Context) {
	creds := api.Credentials{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}

	if creds.Email == "" || creds.Password == "" {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title": "Connexion - TerrePro",
			"Error": "Veuillez saisir votre email et votre mot de passe",
			"Email": creds.Email,
		})
		return
	}

	resp, err := h.api.Login(c.Request.Context(), creds)
	if err != nil {
		if api.IsCanceled(err) {
			c.Abort()
			return
		}
		logger.Warn("Login rejected", "email", creds.Email, "error", err)
		h.render(c, failureStatus(err), "login.html", gin.H{
			"Title": "Connexion - TerrePro",
			"Error": authMessage(err),
			"Email": creds.Email,
		})
		return
	}

	if !h.openSession(c, resp) {
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{
			"Title": "Connexion - TerrePro",
			"Error": msgSessionFailure,
			"Email": creds.Email,
		})
		return
	}

	logger.Info("User logged in", "user_id", resp.User.ID, "email", resp.User.Email)
	h.success(c, "Connexion réussie", "/dashboard")
}

func (h *Handlers) handleRegisterPage(c *gin.Context) {
	if _, ok := session.Current(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title": "Inscription - TerrePro",
		"Form":  api.Registration{},
	})
}

func (h *Handlers) handleRegister(c *gin.Context) {
	reg := api.Registration{
		Email:                strings.TrimSpace(c.PostForm("email")),
		Password:             c.PostForm("password"),
		PasswordConfirmation: c.PostForm("password_confirmation"),
		Nom:                  strings.TrimSpace(c.PostForm("nom")),
		Prenom:               strings.TrimSpace(c.PostForm("prenom")),
		Telephone:            strings.TrimSpace(c.PostForm("telephone")),
	}

	errs := make(map[string]string)
	if reg.Email == "" {
		errs["email"] = "L'email est requis"
	}
	if reg.Password == "" {
		errs["password"] = "Le mot de passe est requis"
	}
	if reg.Password != reg.PasswordConfirmation {
		errs["password_confirmation"] = "Les mots de passe ne correspondent pas"
	}

	data := gin.H{
		"Title": "Inscription - TerrePro",
		"Form":  reg,
	}

	if len(errs) > 0 {
		data["Errors"] = errs
		h.render(c, http.StatusBadRequest, "register.html", data)
		return
	}

	resp, err := h.api.Register(c.Request.Context(), reg)
	if err != nil {
		if api.IsCanceled(err) {
			c.Abort()
			return
		}
		logger.Warn("Registration rejected", "email", reg.Email, "error", err)
		data["Error"] = authMessage(err)
		data["Errors"] = fieldErrors(err)
		h.render(c, failureStatus(err), "register.html", data)
		return
	}

	if !h.openSession(c, resp) {
		data["Error"] = msgSessionFailure
		h.render(c, http.StatusInternalServerError, "register.html", data)
		return
	}

	logger.Info("User registered", "user_id", resp.User.ID, "email", resp.User.Email)

	if h.mailer != nil && h.mailer.IsEnabled() {
		user := resp.User
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := h.mailer.SendWelcomeEmail(ctx, user); err != nil {
				logger.Warn("Failed to send welcome email", "email", user.Email, "error", err)
			}
		}()
	}

	h.success(c, "Compte créé avec succès", "/dashboard")
}

func (h *Handlers) handleLogout(c *gin.Context) {
	snap, _ := session.Current(c)
	if err := h.sessions.Clear(c.Request.Context(), snap.ID); err != nil {
		logger.Error("Failed to clear session on logout", "session_id", snap.ID, "error", err)
	}
	session.ClearCookie(c, !h.cfg.IsDevelopment())
	h.success(c, "Vous êtes déconnecté", "/login")
}

// openSession stores the token and user returned by the API and hands the
// browser its session cookie. Any previous session of this browser is dropped.
func (h *Handlers) openSession(c *gin.Context, resp *api.AuthResponse) bool {
	ctx := c.Request.Context()

	if previous, err := c.Cookie(session.CookieName); err == nil && previous != "" {
		if err := h.sessions.Clear(ctx, previous); err != nil {
			logger.Warn("Failed to drop previous session", "session_id", previous, "error", err)
		}
	}

	snap, err := h.sessions.Save(ctx, resp.Token, resp.User)
	if err != nil {
		logger.Error("Failed to save session", "email", resp.User.Email, "error", err)
		return false
	}

	session.SetCookie(c, snap, !h.cfg.IsDevelopment())
	return true
}

// authMessage is the text shown when login or registration fails. The API's
// own message wins; a missing token in an otherwise successful answer is a
// server fault.
func authMessage(err error) string {
	if errors.Is(err, api.ErrMissingToken) {
		return msgAuthFailed
	}
	return api.UserMessage(err, api.GenericAPIMessage)
}

// snapshotUser is the user stored with the session at login.
func snapshotUser(c *gin.Context) models.User {
	snap, _ := session.Current(c)
	return snap.User
}
