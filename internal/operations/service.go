// Package operations implements the business operations of the tracker.
//
// Every operation runs as one store batch: it reads the collections it
// needs, computes the next records with the ledger package and commits them
// together. Operations never return an error; they report a Result so that
// callers on every surface (CLI, HTTP) render failures the same way.
package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"tracker/internal/logger"
	"tracker/internal/store"
)

// Result is the outcome of an operation.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`

	// Err is the failure cause for callers that classify errors.
	Err error `json:"-"`
}

// Service runs business operations against a store manager.
type Service struct {
	store *store.Manager
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over m.
func NewService(m *store.Manager, opts ...Option) *Service {
	s := &Service{
		store: m,
		now:   time.Now,
		log:   logger.WithComponent("operations"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the manager the service writes to.
func (s *Service) Store() *store.Manager {
	return s.store
}

func (s *Service) stamp() time.Time {
	return s.now().UTC()
}

// run executes fn inside one batch and commits it. Any error or panic
// discards the batch, leaving the cache and the document untouched.
func (s *Service) run(ctx context.Context, op string, fn func(b *store.Batch) (string, error)) (res Result) {
	b, err := s.store.Begin()
	if err != nil {
		return s.fail(op, err)
	}
	defer b.Discard()
	defer func() {
		if r := recover(); r != nil {
			res = s.fail(op, fmt.Errorf("%s: panic: %v", op, r))
		}
	}()

	id, err := fn(b)
	if err != nil {
		return s.fail(op, err)
	}
	if err := b.Commit(ctx); err != nil {
		return s.fail(op, fmt.Errorf("%s: %w", op, err))
	}

	s.log.Info().Str("op", op).Str("id", id).Msg("Operation committed")
	return Result{Success: true, ID: id}
}

func (s *Service) fail(op string, err error) Result {
	s.log.Warn().Str("op", op).Err(err).Msg("Operation failed")
	return Result{Success: false, Error: err.Error(), Err: err}
}

// indexOf returns the index of the first record matching match, or -1.
func indexOf[T any](records []T, match func(*T) bool) int {
	for i := range records {
		if match(&records[i]) {
			return i
		}
	}
	return -1
}

// removeWhere drops the records matching match, keeping order.
func removeWhere[T any](records []T, match func(*T) bool) []T {
	out := make([]T, 0, len(records))
	for i := range records {
		if !match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
