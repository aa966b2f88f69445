package application

import (
	"context"
	"errors"
)

// UnitOfWork provides transactional support for aggregating multiple operations.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc is a function that executes within a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork executes fn inside a transaction. A failing fn rolls back and
// its error is returned unchanged.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}

// RetryUnitOfWork runs WithUnitOfWork up to attempts times, retrying only
// while the returned error matches retryOn. Each attempt gets a fresh
// transaction so the read half of a read-modify-write sees committed state.
func RetryUnitOfWork(ctx context.Context, uow UnitOfWork, attempts int, retryOn error, fn UnitOfWorkFunc) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = WithUnitOfWork(ctx, uow, fn)
		if err == nil || !errors.Is(err, retryOn) {
			return err
		}
	}
	return err
}
