// Package session keeps the bearer token and user profile of each browser
// session on the server. The browser only holds an opaque session id.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"terrepro/internal/database"
	"terrepro/internal/logger"
	"terrepro/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = database.ErrSessionNotFound
	ErrEmptyToken = errors.New("authentication token is empty")
)

// Snapshot is the immutable view of a session read at the start of a request.
type Snapshot struct {
	ID        string
	Token     string
	User      models.User
	ExpiresAt time.Time
	// TokenExpiresAt is set only when the token is a JWT carrying an exp claim.
	TokenExpiresAt time.Time
}

func (s Snapshot) HasToken() bool {
	return s.Token != ""
}

// TokenExpired reports whether the token is known to be expired. Opaque
// tokens never expire on the client side.
func (s Snapshot) TokenExpired(now time.Time) bool {
	return !s.TokenExpiresAt.IsZero() && !now.Before(s.TokenExpiresAt)
}

type Store struct {
	db       *sql.DB
	sealer   *sealer
	duration time.Duration
	now      func() time.Time
}

func NewStore(db *sql.DB, secretKey string, duration time.Duration) (*Store, error) {
	s, err := newSealer(secretKey)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = 7 * 24 * time.Hour
	}
	return &Store{db: db, sealer: s, duration: duration, now: time.Now}, nil
}

func (s *Store) Duration() time.Duration {
	return s.duration
}

// Save persists token and user together under a new session id. It is called
// only after the API accepted the credentials.
func (s *Store) Save(ctx context.Context, token string, user models.User) (Snapshot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Snapshot{}, ErrEmptyToken
	}

	sealed, err := s.sealer.seal(token)
	if err != nil {
		return Snapshot{}, err
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode user: %w", err)
	}

	now := s.now()
	row := &models.Session{
		ID:          uuid.NewString(),
		SealedToken: sealed,
		UserJSON:    string(userJSON),
		ExpiresAt:   now.Add(s.duration),
		CreatedAt:   now,
	}
	if err := database.CreateSession(ctx, s.db, row); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		ID:             row.ID,
		Token:          token,
		User:           user,
		ExpiresAt:      row.ExpiresAt,
		TokenExpiresAt: tokenExpiry(token),
	}, nil
}

// Load returns the session snapshot and slides its expiry forward.
func (s *Store) Load(ctx context.Context, id string) (Snapshot, error) {
	if id == "" {
		return Snapshot{}, ErrNotFound
	}

	now := s.now()
	row, err := database.GetSession(ctx, s.db, id, now)
	if err != nil {
		return Snapshot{}, err
	}

	token, err := s.sealer.open(row.SealedToken)
	if err != nil {
		// Sealed with another secret key: the session cannot be used any more.
		logger.Warn("Discarding unreadable session", "session_id", id, "error", err)
		_ = database.DeleteSession(ctx, s.db, id)
		return Snapshot{}, ErrNotFound
	}

	var user models.User
	if err := json.Unmarshal([]byte(row.UserJSON), &user); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode session user: %w", err)
	}

	expiresAt := now.Add(s.duration)
	if err := database.RenewSession(ctx, s.db, id, expiresAt); err != nil {
		logger.Warn("Failed to renew session", "session_id", id, "error", err)
		expiresAt = row.ExpiresAt
	}

	return Snapshot{
		ID:             row.ID,
		Token:          token,
		User:           user,
		ExpiresAt:      expiresAt,
		TokenExpiresAt: tokenExpiry(token),
	}, nil
}

// CurrentToken returns the stored token, or false when there is none.
func (s *Store) CurrentToken(ctx context.Context, id string) (string, bool) {
	snap, err := s.Load(ctx, id)
	if err != nil || !snap.HasToken() {
		return "", false
	}
	return snap.Token, true
}

// UpdateUser refreshes the cached profile after the user edited it.
func (s *Store) UpdateUser(ctx context.Context, id string, user models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return database.UpdateSessionUser(ctx, s.db, id, string(userJSON))
}

func (s *Store) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return database.DeleteSession(ctx, s.db, id)
}

func (s *Store) Prune(ctx context.Context) (int64, error) {
	return database.CleanupExpiredSessions(ctx, s.db, s.now())
}

func (s *Store) IssueCSRFToken(ctx context.Context, sessionID string) (string, error) {
	token, err := database.CreateCSRFToken(ctx, s.db, sessionID, s.now())
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

func (s *Store) ConsumeCSRFToken(ctx context.Context, sessionID, token string) error {
	return database.ValidateCSRFToken(ctx, s.db, token, sessionID, s.now())
}

// tokenExpiry reads the exp claim of a JWT without verifying it. The API owns
// the signing key; this is only used to stop sending tokens known to be stale.
func tokenExpiry(token string) time.Time {
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
