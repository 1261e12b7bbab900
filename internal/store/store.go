// Package store wraps db.Querier with transaction support and groups the
// multi-step operations that must execute atomically: registering a user,
// seeding the questionnaire, and recording a submission under the
// per-respondent lock.
//
// Single-query reads (GetUserByID, GetSubmissionByID, etc.) should be called
// directly on db.Querier in handlers. There is no value in proxying them
// through this package.
//
// Dependency rule: store imports db and scoring only. It never imports api,
// worker, screening, classifier or email.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nyashahama/scas-screening-backend/internal/db"
)

// Store holds a *sql.DB for starting transactions and a db.Querier for
// executing queries outside of transactions.
type Store struct {
	// pool is the raw connection pool, used only to begin transactions.
	pool *sql.DB

	// q is the Querier used for non-transactional calls.
	q db.Querier
}

// New creates a Store from a live connection pool. The pool must already be
// open and verified (e.g. via db.PingContext) before calling New.
func New(pool *sql.DB, q db.Querier) *Store {
	return &Store{pool: pool, q: q}
}

// Q exposes the underlying Querier so callers (handlers, worker) can run
// single-query reads without going through a store method.
//
//	user, err := s.Q().GetUserByID(ctx, id)
func (s *Store) Q() db.Querier {
	return s.q
}

// txQuerier is a function that receives a transactional Querier and returns an
// error. Returning a non-nil error causes withTx to roll back automatically.
type txQuerier func(ctx context.Context, q db.Querier) error

// withTx runs fn in a serializable transaction. It is used by the seeding
// paths, which read before they write and run rarely.
func (s *Store) withTx(ctx context.Context, fn txQuerier) error {
	return s.withTxOpts(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// withTxOpts begins a transaction with opts, passes a Querier scoped to that
// transaction to fn, and commits on success or rolls back on any error
// (including panics).
func (s *Store) withTxOpts(ctx context.Context, opts *sql.TxOptions, fn txQuerier) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	// Roll back on panic so the connection is never left in a broken state.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	// db.Queries.WithTx re-uses prepared statements scoped to the transaction.
	txQ := s.q.(*db.Queries).WithTx(tx)

	if err := fn(ctx, txQ); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}
