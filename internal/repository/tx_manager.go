package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager runs a function against repositories bound to one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// WithFacultyLock additionally serialises fn against every other
	// WithFacultyLock call for the same faculty member until commit.
	WithFacultyLock(ctx context.Context, facultyID int64, fn func(ctx context.Context, repos Repositories) error) error
}

type PostgresTxManager struct {
	pool *pgxpool.Pool
}

func NewPostgresTxManager(pool *pgxpool.Pool) *PostgresTxManager {
	return &PostgresTxManager{pool: pool}
}

func (m *PostgresTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return m.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

func (m *PostgresTxManager) WithFacultyLock(ctx context.Context, facultyID int64, fn func(ctx context.Context, repos Repositories) error) error {
	return m.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Блокировка снимается автоматически при commit/rollback
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, facultyID); err != nil {
			return fmt.Errorf("lock faculty %d: %w", facultyID, err)
		}
		return fn(ctx, NewRepositories(tx))
	})
}

func (m *PostgresTxManager) inTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
