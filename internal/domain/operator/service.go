package operator

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/rpggio/eventsadmin/internal/repository"
)

const tokenBytes = 32

// Service issues and resolves operator sessions.
type Service struct {
	sessions SessionRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new operator session service.
func NewService(sessions SessionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue creates a session for email that expires after ttl.
func (s *Service) Issue(ctx context.Context, email string, ttl time.Duration) (*IssuedSession, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || ttl <= 0 {
		return nil, ErrInvalidInput
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	now := s.now().UTC()
	sess := Session{
		TokenHash: HashToken(token),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("operator session issued", "email", email, "expires_at", sess.ExpiresAt)
	return &IssuedSession{Token: token, Session: sess}, nil
}

// ResolveSession returns the live session for token. Missing, expired and
// identity-less sessions all fail.
func (s *Service) ResolveSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	sess, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if sess.Email == "" {
		return nil, ErrIncompleteSession
	}
	if !sess.Valid(s.now()) {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Revoke deletes the session for token.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.Delete(ctx, HashToken(token)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions that expired before now.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	if n > 0 {
		s.logger.Debug("purged expired operator sessions", "count", n)
	}
	return n, nil
}

// HashToken returns the stored form of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
