package repository

import "context"

// TransactionManager runs fn inside a database transaction carried by ctx.
// Repositories called with that ctx join the transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
