package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"terrepro/internal/api"
	"terrepro/internal/config"
	"terrepro/internal/database"
	"terrepro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terrepro.yaml")
	content := "environment: development\ndatabase_path: " + dbPath + "\nsecret_key: cli-test-secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSessionsPrune(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	dbPath := filepath.Join(t.TempDir(), "sessions.db")

	db, err := database.Initialize(dbPath)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	now := time.Now()
	require.NoError(t, database.CreateSession(context.Background(), db, &models.Session{
		ID:          "stale",
		SealedToken: []byte("sealed"),
		UserJSON:    "{}",
		ExpiresAt:   now.Add(-time.Hour),
		CreatedAt:   now.Add(-48 * time.Hour),
	}))
	require.NoError(t, db.Close())

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", writeConfig(t, dbPath), "sessions", "prune"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Pruned 1 expired session(s)\n", buf.String())
}

func TestSessionsStats(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	dbPath := filepath.Join(t.TempDir(), "stats.db")

	db, err := database.Initialize(dbPath)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	now := time.Now()
	require.NoError(t, database.CreateSession(context.Background(), db, &models.Session{
		ID:          "live",
		SealedToken: []byte("sealed"),
		UserJSON:    "{}",
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}))
	require.NoError(t, db.Close())

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", writeConfig(t, dbPath), "sessions", "stats"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Active sessions:  1")
	assert.Contains(t, buf.String(), "Expired sessions: 0")
}

func TestSessionsPruneMissingConfig(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "sessions", "prune"})

	assert.Error(t, cmd.Execute())
}

func TestNewEngineServesPagesAndAssets(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:    "development",
		TemplatesDir:   filepath.Join("..", "..", "templates"),
		StaticDir:      filepath.Join("..", "..", "static"),
		AllowedOrigins: "http://localhost:3000",
	}
	db, store, err := openStore(&config.Config{DatabasePath: ":memory:", SecretKey: "engine-test"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine := NewEngine(cfg, api.NewClient("http://127.0.0.1:1", time.Second), store, nil)

	for path, want := range map[string]int{
		"/healthz":        http.StatusOK,
		"/static/app.css": http.StatusOK,
		"/login":          http.StatusOK,
		"/dashboard":      http.StatusFound,
		"/inconnue":       http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
