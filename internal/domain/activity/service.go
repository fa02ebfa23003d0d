package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const defaultListLimit = 50

// Service handles the import audit log.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordImport logs an import entry with the current timestamp if missing.
func (s *Service) RecordImport(ctx context.Context, entry *ImportEntry) error {
	if entry == nil || entry.EventID == "" || entry.Outcome == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging import: %w", err)
	}
	return nil
}

// RecentImports lists import entries, newest first.
func (s *Service) RecentImports(ctx context.Context, opts ListOptions) ([]ImportEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	return s.repo.List(ctx, opts)
}
