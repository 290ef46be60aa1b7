package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"terrepro/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := Initialize(":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newSession(id string, now time.Time) *models.Session {
	return &models.Session{
		ID:          id,
		SealedToken: []byte("sealed"),
		UserJSON:    `{"id":1,"nom":"Dupont"}`,
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := CreateSession(ctx, db, newSession("s1", now)); err != nil {
		t.Fatal("Failed to create session:", err)
	}

	session, err := GetSession(ctx, db, "s1", now)
	if err != nil {
		t.Fatal("Failed to get session:", err)
	}
	if string(session.SealedToken) != "sealed" {
		t.Errorf("Expected sealed token to round-trip, got %q", session.SealedToken)
	}
	if session.UserJSON != `{"id":1,"nom":"Dupont"}` {
		t.Errorf("Unexpected user JSON %s", session.UserJSON)
	}

	if err := UpdateSessionUser(ctx, db, "s1", `{"id":1,"nom":"Martin"}`); err != nil {
		t.Fatal("Failed to update session user:", err)
	}
	session, _ = GetSession(ctx, db, "s1", now)
	if session.UserJSON != `{"id":1,"nom":"Martin"}` {
		t.Errorf("Expected updated user JSON, got %s", session.UserJSON)
	}

	if err := DeleteSession(ctx, db, "s1"); err != nil {
		t.Fatal("Failed to delete session:", err)
	}
	if _, err := GetSession(ctx, db, "s1", now); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound after deletion, got %v", err)
	}
	if err := UpdateSessionUser(ctx, db, "s1", "{}"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound when updating a deleted session, got %v", err)
	}
}

func TestSessionExpiryAndRenewal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := CreateSession(ctx, db, newSession("s1", now)); err != nil {
		t.Fatal(err)
	}

	later := now.Add(2 * time.Hour)
	if _, err := GetSession(ctx, db, "s1", later); err != ErrSessionNotFound {
		t.Errorf("Expected session to be expired, got %v", err)
	}

	if err := RenewSession(ctx, db, "s1", later.Add(time.Hour)); err != nil {
		t.Fatal("Failed to renew session:", err)
	}
	if _, err := GetSession(ctx, db, "s1", later); err != nil {
		t.Errorf("Expected renewed session to be valid, got %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	expired := newSession("old", now.Add(-2*time.Hour))
	if err := CreateSession(ctx, db, expired); err != nil {
		t.Fatal(err)
	}
	if err := CreateSession(ctx, db, newSession("fresh", now)); err != nil {
		t.Fatal(err)
	}

	removed, err := CleanupExpiredSessions(ctx, db, now)
	if err != nil {
		t.Fatal("Failed to cleanup sessions:", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := GetSession(ctx, db, "fresh", now); err != nil {
		t.Errorf("Expected fresh session to survive cleanup, got %v", err)
	}
}

func TestCSRFTokens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := CreateSession(ctx, db, newSession("s1", now)); err != nil {
		t.Fatal(err)
	}
	if err := CreateSession(ctx, db, newSession("s2", now)); err != nil {
		t.Fatal(err)
	}

	token, err := CreateCSRFToken(ctx, db, "s1", now)
	if err != nil {
		t.Fatal("Failed to create CSRF token:", err)
	}
	if len(token.Token) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(token.Token))
	}

	if err := ValidateCSRFToken(ctx, db, token.Token, "s2", now); err != ErrCSRFNotFound {
		t.Errorf("Expected token to be rejected for another session, got %v", err)
	}
	if err := ValidateCSRFToken(ctx, db, token.Token, "s1", now); err != nil {
		t.Errorf("Expected token to validate, got %v", err)
	}
	if err := ValidateCSRFToken(ctx, db, token.Token, "s1", now); err != ErrCSRFNotFound {
		t.Errorf("Expected token to be single use, got %v", err)
	}

	stale, err := CreateCSRFToken(ctx, db, "s1", now.Add(-2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateCSRFToken(ctx, db, stale.Token, "s1", now); err != ErrCSRFNotFound {
		t.Errorf("Expected expired token to be rejected, got %v", err)
	}
}

func TestCSRFTokensDeletedWithSession(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := CreateSession(ctx, db, newSession("s1", now)); err != nil {
		t.Fatal(err)
	}
	token, err := CreateCSRFToken(ctx, db, "s1", now)
	if err != nil {
		t.Fatal(err)
	}
	if err := DeleteSession(ctx, db, "s1"); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM csrf_tokens WHERE token = ?`, token.Token).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected CSRF tokens to cascade on session deletion, found %d", count)
	}
}

func TestGetSessionStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := CreateSession(ctx, db, newSession("old", now.Add(-48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := CreateSession(ctx, db, newSession("fresh", now)); err != nil {
		t.Fatal(err)
	}

	stats, err := GetSessionStats(ctx, db, now)
	if err != nil {
		t.Fatal("Failed to get session stats:", err)
	}
	if stats.ActiveSessions != 1 {
		t.Errorf("Expected 1 active session, got %d", stats.ActiveSessions)
	}
	if stats.ExpiredSessions != 1 {
		t.Errorf("Expected 1 expired session, got %d", stats.ExpiredSessions)
	}
	if stats.RecentLogins != 1 {
		t.Errorf("Expected 1 recent login, got %d", stats.RecentLogins)
	}
	if stats.PendingCSRF != 0 {
		t.Errorf("Expected no CSRF tokens, got %d", stats.PendingCSRF)
	}
}
