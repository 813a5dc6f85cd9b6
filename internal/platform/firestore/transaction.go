package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

const (
	txMaxAttempts = 5
	txTimeout     = 15 * time.Second
)

// TxFunc runs inside a Firestore transaction. It may be invoked several times when commits
// contend, so it must not have side effects outside tx.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

type txKey struct{}

// ContextWithTransaction attaches tx to ctx so Collection calls made with it join tx.
func ContextWithTransaction(ctx context.Context, tx *firestore.Transaction) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TransactionFromContext reports the transaction attached to ctx, if any.
func TransactionFromContext(ctx context.Context) (*firestore.Transaction, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, _ := ctx.Value(txKey{}).(*firestore.Transaction)
	return tx, tx != nil
}

// RunTransaction runs fn in a transaction on the provider's client. The context handed to fn
// already carries the transaction.
func (p *Provider) RunTransaction(ctx context.Context, fn TxFunc) error {
	if fn == nil {
		return errors.New("firestore: transaction function is nil")
	}
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > txTimeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, txTimeout)
		defer cancel()
	}

	err = client.RunTransaction(ctx, func(txCtx context.Context, tx *firestore.Transaction) error {
		return fn(ContextWithTransaction(txCtx, tx), tx)
	}, firestore.MaxAttempts(txMaxAttempts))
	return WrapError("transaction", err)
}

// UnitOfWork runs repository calls atomically on Firestore. A call made while ctx already
// carries a transaction joins it instead of opening a nested one.
type UnitOfWork struct {
	provider *Provider
}

func NewUnitOfWork(provider *Provider) (*UnitOfWork, error) {
	if provider == nil {
		return nil, errors.New("firestore unit of work: provider is required")
	}
	return &UnitOfWork{provider: provider}, nil
}

// RunInTx runs fn with a transactional context. Firestore requires every read in fn to precede
// the first write. Errors returned by fn reach the caller unwrapped.
func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.New("firestore unit of work: function is required")
	}
	if _, ok := TransactionFromContext(ctx); ok {
		return fn(ctx)
	}
	var fnErr error
	err := u.provider.RunTransaction(ctx, func(txCtx context.Context, _ *firestore.Transaction) error {
		fnErr = fn(txCtx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}
