package handlers

import (
	"context"
	"net/http"
	"time"

	"terrepro/internal/api"
	"terrepro/internal/config"
	"terrepro/internal/logger"
	"terrepro/internal/middleware"
	"terrepro/internal/models"
	"terrepro/internal/session"

	"github.com/gin-gonic/gin"
)

// Mailer sends the optional welcome email after registration.
type Mailer interface {
	IsEnabled() bool
	SendWelcomeEmail(ctx context.Context, user models.User) error
}

// Handlers groups the page controllers. They only read the session snapshot
// injected by the guard; auth handlers are the only writers of the store.
type Handlers struct {
	cfg      *config.Config
	api      *api.Client
	sessions *session.Store
	mailer   Mailer
}

func New(cfg *config.Config, client *api.Client, sessions *session.Store, mailer Mailer) *Handlers {
	return &Handlers{cfg: cfg, api: client, sessions: sessions, mailer: mailer}
}

func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.Use(middleware.RequestID())
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders(h.cfg))
	r.Use(middleware.TrimSpaces())

	r.GET("/healthz", handleHealth)

	r.GET("/", middleware.SessionOptional(h.sessions), h.handleHome)
	r.GET("/login", middleware.SessionOptional(h.sessions), h.handleLoginPage)
	r.POST("/login", middleware.AuthRateLimit(h.cfg), h.handleLogin)
	r.GET("/register", middleware.SessionOptional(h.sessions), h.handleRegisterPage)
	r.POST("/register", middleware.AuthRateLimit(h.cfg), h.handleRegister)
	r.POST("/logout", middleware.SessionRequired(h.sessions, h.cfg), h.handleLogout)

	protected := r.Group("/")
	protected.Use(middleware.SessionRequired(h.sessions, h.cfg))
	protected.Use(middleware.CSRF(h.sessions, h.cfg))
	{
		protected.GET("/dashboard", h.handleDashboard)

		protected.GET("/cultures", h.handleCultures)
		protected.GET("/cultures/new", h.handleNewCulturePage)
		protected.POST("/cultures/new", h.handleCreateCulture)

		protected.GET("/operations", h.handleOperations)
		protected.GET("/operations/new", h.handleNewOperationPage)
		protected.POST("/operations/new", h.handleCreateOperation)

		protected.GET("/finance", h.handleFinancePage)
		protected.POST("/finance", h.handleCreateFinance)

		protected.GET("/recoltes", h.handleHarvestPage)
		protected.POST("/recoltes", h.handleCreateHarvest)

		protected.GET("/exports", h.handleExportPage)
		protected.POST("/exports", h.handleExport)

		protected.GET("/profil", h.handleProfilePage)
		protected.POST("/profil", h.handleUpdateProfile)

		protected.GET("/api/csrf-token", h.handleCSRFToken)
	}

	r.NoRoute(middleware.SessionOptional(h.sessions), h.handleNotFound)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) handleHome(c *gin.Context) {
	if _, ok := session.Current(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// handleCSRFToken hands out a fresh token to pages that stay in place after a
// submit, such as the export form whose response is a download.
func (h *Handlers) handleCSRFToken(c *gin.Context) {
	snap, _ := session.Current(c)
	token, err := h.sessions.IssueCSRFToken(c.Request.Context(), snap.ID)
	if err != nil {
		logger.Error("Failed to issue CSRF token", "session_id", snap.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSRF token"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handlers) handleNotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{
		"Title": "Page introuvable - TerrePro",
	})
}
