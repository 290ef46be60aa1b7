package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"terrepro/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrCSRFNotFound    = errors.New("CSRF token not found or expired")
)

const csrfTokenLifetime = time.Hour

func CreateSession(ctx context.Context, db *sql.DB, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, token, user_json, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		session.ID,
		session.SealedToken,
		session.UserJSON,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns the session if it exists and has not expired at now.
func GetSession(ctx context.Context, db *sql.DB, sessionID string, now time.Time) (*models.Session, error) {
	query := `
		SELECT id, token, user_json, expires_at, created_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`

	var expiresAt, createdAt int64
	session := &models.Session{}
	err := db.QueryRowContext(ctx, query, sessionID, now.Unix()).Scan(
		&session.ID,
		&session.SealedToken,
		&session.UserJSON,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session.ExpiresAt = time.Unix(expiresAt, 0)
	session.CreatedAt = time.Unix(createdAt, 0)
	return session, nil
}

// RenewSession slides the expiry forward on activity.
func RenewSession(ctx context.Context, db *sql.DB, sessionID string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx, `UPDATE sessions SET expires_at = ? WHERE id = ?`, expiresAt.Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to renew session: %w", err)
	}
	return nil
}

func UpdateSessionUser(ctx context.Context, db *sql.DB, sessionID, userJSON string) error {
	result, err := db.ExecContext(ctx, `UPDATE sessions SET user_json = ? WHERE id = ?`, userJSON, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session user: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func DeleteSession(ctx context.Context, db *sql.DB, sessionID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and stale CSRF tokens and
// reports how many sessions were deleted.
func CleanupExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	removed, _ := result.RowsAffected()

	if _, err := db.ExecContext(ctx, `DELETE FROM csrf_tokens WHERE expires_at <= ?`, now.Unix()); err != nil {
		return removed, fmt.Errorf("failed to cleanup expired CSRF tokens: %w", err)
	}
	return removed, nil
}

func CreateCSRFToken(ctx context.Context, db *sql.DB, sessionID string, now time.Time) (*models.CSRFToken, error) {
	token, err := GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF token: %w", err)
	}

	expiresAt := now.Add(csrfTokenLifetime)
	_, err = db.ExecContext(ctx,
		`INSERT INTO csrf_tokens (token, session_id, expires_at) VALUES (?, ?, ?)`,
		token, sessionID, expiresAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create CSRF token: %w", err)
	}

	return &models.CSRFToken{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateCSRFToken checks the token belongs to the session and consumes it.
func ValidateCSRFToken(ctx context.Context, db *sql.DB, token, sessionID string, now time.Time) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM csrf_tokens WHERE token = ? AND session_id = ? AND expires_at > ?`,
		token, sessionID, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to validate CSRF token: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to validate CSRF token: %w", err)
	}
	if n == 0 {
		return ErrCSRFNotFound
	}
	return nil
}

func GenerateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
