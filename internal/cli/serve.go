package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"terrepro/internal/api"
	"terrepro/internal/config"
	"terrepro/internal/database"
	"terrepro/internal/email"
	"terrepro/internal/handlers"
	"terrepro/internal/logger"
	"terrepro/internal/middleware"
	"terrepro/internal/session"
	"terrepro/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const pruneInterval = time.Hour

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Start the web server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

// NewEngine builds the gin engine with templates, static files and every route.
func NewEngine(cfg *config.Config, client *api.Client, store *session.Store, mailer handlers.Mailer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	blocker := middleware.NewBlocker(cfg)
	r.Use(blocker.Guard())
	r.Use(blocker.Track())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))

	r.SetFuncMap(views.FuncMap())
	r.LoadHTMLGlob(filepath.Join(cfg.TemplatesDir, "*.html"))
	r.Static("/static", cfg.StaticDir)

	handlers.SetupRoutes(r, handlers.New(cfg, client, store, mailer))
	return r
}

func openStore(cfg *config.Config) (*sql.DB, *session.Store, error) {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	store, err := session.NewStore(db, cfg.SecretKey, cfg.SessionDuration)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, store, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.UsesDefaultSecret() {
		if !cfg.IsDevelopment() {
			return errors.New("SECRET_KEY must be set outside development")
		}
		logger.Warn("Using the default SECRET_KEY; stored tokens are not protected")
	}

	db, store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	mailer := email.NewService(cfg)
	if mailer.IsEnabled() {
		logger.Info("Email service enabled with Mailgun")
	} else {
		logger.Info("Email service disabled - Mailgun not configured")
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	engine := NewEngine(cfg, client, store, mailer)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneSessions(ctx, store, pruneInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "api", client.BaseURL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pruneSessions(ctx context.Context, store *session.Store, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx)
			if err != nil {
				logger.Error("Failed to prune sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("Pruned expired sessions", "count", n)
			}
		}
	}
}
