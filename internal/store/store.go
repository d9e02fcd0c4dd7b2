// Package store owns the in-memory snapshot and serializes access to it.
//
// Readers share the lock. Writers get a private clone of the snapshot inside
// Update; the clone is persisted and swapped in only when the mutation and the
// save both succeed, so a failed call leaves no trace.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/repository"
)

type Store struct {
	mu     sync.RWMutex
	data   *models.Data
	repo   repository.SnapshotRepository
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Store)

// WithClock replaces time.Now. Tests use it to drive standups and deferred
// messages without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the last snapshot from repo, or starts empty when there is none.
func Open(ctx context.Context, repo repository.SnapshotRepository, logger *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := repo.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNoSnapshot):
		data = models.NewData()
		logger.Info("no snapshot found, starting empty")
	case err != nil:
		return nil, fmt.Errorf("open store: %w", err)
	default:
		logger.Info("snapshot loaded",
			zap.Int("users", len(data.Users)),
			zap.Int("channels", len(data.Channels)),
			zap.Int("dms", len(data.Dms)),
			zap.Int64("last_message_id", data.Counters.Message),
		)
	}
	s.data = data
	return s, nil
}

// Now reads the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// View runs fn with the current snapshot under the read lock. fn must not
// modify data or keep references to it after returning.
func (s *Store) View(fn func(data *models.Data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// Update runs fn against a clone of the snapshot under the write lock.
//
// If fn returns an error the clone is discarded. Otherwise the clone is saved
// through the repository and, if that succeeds, becomes the live snapshot.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{Data: s.data.Clone(), Now: s.now()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, tx.Data); err != nil {
		s.logger.Error("snapshot save failed, changes discarded", zap.Error(err))
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.data = tx.Data
	return nil
}

// Reset drops every record and persists the empty snapshot.
func (s *Store) Reset(ctx context.Context) error {
	return s.Update(ctx, func(tx *Tx) error {
		tx.Data = models.NewData()
		return nil
	})
}
