package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/durablefs/vfs/pkg/vfs/vfserrors"
)

// Tx is a handle to the single active transaction (or, when nested, the
// innermost savepoint within it). At most one outer transaction is active
// per Store at a time, per the single-writer contract; nested calls to
// WithTx open a savepoint instead of a second connection-level transaction.
type Tx struct {
	tx    *sql.Tx
	store *Store

	depth        int
	savepoint    string
	logID        int64 // valid only at depth 0
}

type txCtxKey struct{}

func txFromContext(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(*Tx)
	return tx, ok
}

func withTxContext(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, txCtxKey{}, tx)
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting entry/blob
// accessors run either standalone or nested inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q resolves the querier to use for ctx: the active transaction if one is
// present, otherwise the store's raw connection (each call then runs as
// its own implicit transaction, which is safe for single-statement reads
// and writes since SQLite serializes them on the one open connection).
func (s *Store) q(ctx context.Context) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx.tx
	}
	return s.db
}

// WithTx runs fn within a transaction. If ctx already carries an active
// transaction, fn runs inside a SAVEPOINT nested within it instead of a
// fresh connection-level transaction, so nested calls compose without
// the caller needing to know whether it's the outermost one. A timeout,
// if set on ctx, surfaces as EBUSY-class cancellation from the caller's
// perspective.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if parent, ok := txFromContext(ctx); ok {
		return s.withSavepoint(ctx, parent, fn)
	}
	return s.withNewTx(ctx, fn)
}

func (s *Store) withNewTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapTxTimeout("begin", err)
	}

	startedAt := time.Now().UnixMilli()
	res, err := sqlTx.ExecContext(ctx,
		`INSERT INTO transaction_log (started_at, status) VALUES (?, 'in_progress')`, startedAt)
	if err != nil {
		sqlTx.Rollback()
		return wrapTxTimeout("write transaction log", err)
	}
	logID, _ := res.LastInsertId()

	tx := &Tx{tx: sqlTx, store: s, logID: logID}
	childCtx := withTxContext(ctx, tx)

	fnErr := fn(childCtx)
	endedAt := time.Now().UnixMilli()

	if fnErr != nil {
		sqlTx.Rollback()
		s.db.ExecContext(context.Background(),
			`UPDATE transaction_log SET status = 'rolled_back', ended_at = ? WHERE id = ?`, endedAt, logID)
		return wrapTxTimeout("transaction", fnErr)
	}

	if _, err := sqlTx.ExecContext(ctx,
		`UPDATE transaction_log SET status = 'committed', ended_at = ? WHERE id = ?`, endedAt, logID); err != nil {
		sqlTx.Rollback()
		return wrapTxTimeout("finalize transaction log", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return wrapTxTimeout("commit transaction", err)
	}
	return nil
}

// wrapTxTimeout reports err as vfserrors.EBUSY when it stems from the
// transaction's deadline expiring, so a bounded WithTx surfaces a retryable
// busy condition to callers instead of an opaque SQL error; any other
// error is wrapped unchanged as before.
func wrapTxTimeout(step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return vfserrors.Wrap(step, "", vfserrors.EBUSY, err)
	}
	return fmt.Errorf("%s: %w", step, err)
}

func (s *Store) withSavepoint(ctx context.Context, parent *Tx, fn func(ctx context.Context) error) error {
	name := fmt.Sprintf("sp_%d", s.savepointSeq.Add(1))

	if _, err := parent.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	child := &Tx{tx: parent.tx, store: s, depth: parent.depth + 1, savepoint: name, logID: parent.logID}
	childCtx := withTxContext(ctx, child)

	if err := fn(childCtx); err != nil {
		if _, rbErr := parent.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint also failed: %v)", err, rbErr)
		}
		return err
	}

	if _, err := parent.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
