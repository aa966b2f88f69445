package database

import (
	"context"
	"sync"
)

type txKey struct{}

// TxInfo is the transaction a unit of work placed in a context. Owned is
// false for units that joined an outer transaction; only the owner ends it.
type TxInfo struct {
	Tx    Transaction
	Owned bool

	hooks *commitHooks
}

// commitHooks is shared by the owning unit and every unit that joined it.
type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func (h *commitHooks) add(fn func(context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) drain() []func(context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fns := h.fns
	h.fns = nil
	return fns
}

// WithTx returns a context carrying tx with an empty set of commit hooks.
func WithTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned, hooks: &commitHooks{}})
}

// AfterCommit defers fn until the transaction in ctx commits; it is dropped
// on rollback. Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	info, ok := TxInfoFromContext(ctx)
	if !ok || info.hooks == nil {
		fn(ctx)
		return
	}
	info.hooks.add(fn)
}

// TxInfoFromContext reports the transaction carried by ctx, if any.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	return info, ok && info.Tx != nil
}

// ExecutorFromContext routes repository SQL into the active transaction, or
// straight to conn outside one.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return conn
}

// GenericUnitOfWork implements application.UnitOfWork for any Connection.
type GenericUnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a unit of work over conn.
func NewUnitOfWork(conn Connection) *GenericUnitOfWork {
	return &GenericUnitOfWork{conn: conn}
}

// Begin opens a transaction. Inside an existing one it joins instead, so a
// command handler can call another without nesting transactions.
func (u *GenericUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if outer, ok := TxInfoFromContext(ctx); ok {
		outer.Owned = false
		return context.WithValue(ctx, txKey{}, outer), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return WithTx(ctx, tx, true), nil
}

// Commit ends an owned transaction and then runs its AfterCommit hooks;
// joined units return nil.
func (u *GenericUnitOfWork) Commit(ctx context.Context) error {
	info, err := u.owned(ctx)
	if err != nil || !info.Owned {
		return err
	}
	if err := info.Tx.Commit(ctx); err != nil {
		info.hooks.drain()
		return err
	}
	for _, fn := range info.hooks.drain() {
		fn(ctx)
	}
	return nil
}

// Rollback aborts an owned transaction and discards its hooks; joined units
// return nil and leave the decision to the owner.
func (u *GenericUnitOfWork) Rollback(ctx context.Context) error {
	info, err := u.owned(ctx)
	if err != nil || !info.Owned {
		return err
	}
	info.hooks.drain()
	return info.Tx.Rollback(ctx)
}

func (u *GenericUnitOfWork) owned(ctx context.Context) (TxInfo, error) {
	info, ok := TxInfoFromContext(ctx)
	if !ok {
		return TxInfo{}, ErrNoTransaction
	}
	if info.hooks == nil {
		info.hooks = &commitHooks{}
	}
	return info, nil
}
