package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SessionStats struct {
	ActiveSessions  int `json:"active_sessions"`
	ExpiredSessions int `json:"expired_sessions"`
	RecentLogins    int `json:"recent_logins"`
	PendingCSRF     int `json:"pending_csrf_tokens"`
}

// GetSessionStats counts stored sessions. Recent logins are sessions created
// within the last 24 hours.
func GetSessionStats(ctx context.Context, db *sql.DB, now time.Time) (*SessionStats, error) {
	stats := &SessionStats{}

	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE expires_at > ?", now.Unix()).Scan(&stats.ActiveSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE expires_at <= ?", now.Unix()).Scan(&stats.ExpiredSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired sessions: %w", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE created_at > ?", now.Add(-24*time.Hour).Unix()).Scan(&stats.RecentLogins)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent logins: %w", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM csrf_tokens WHERE expires_at > ?", now.Unix()).Scan(&stats.PendingCSRF)
	if err != nil {
		return nil, fmt.Errorf("failed to count CSRF tokens: %w", err)
	}

	return stats, nil
}
