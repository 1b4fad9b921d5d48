package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Store runs every note, category and tag operation against an injected
// gorm handle. Each call is its own unit of work.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

func NewStore(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "store").Logger(),
		now: time.Now,
	}
}

// WithClock returns a copy of the store that reads the current time from now.
func (s *Store) WithClock(now func() time.Time) *Store {
	clone := *s
	clone.now = now
	return &clone
}

// timestamp is the clock reading stored in created_at / updated_at. It is
// truncated to the coarsest precision any supported dialect keeps.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return s.fail("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return s.fail("ping", err)
	}
	return nil
}

// fail passes caller-facing errors through and turns everything else into a
// logged PersistenceError.
func (s *Store) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var refErr *ReferenceError
	if errors.As(err, &refErr) {
		return err
	}
	var pErr *PersistenceError
	if errors.As(err, &pErr) {
		return err
	}

	s.log.Error().Err(err).Str("op", op).Msg("persistence failure")
	return &PersistenceError{Op: op, Err: err}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
