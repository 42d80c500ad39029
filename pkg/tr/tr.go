// Package tr передаёт открытую транзакцию от Transactor к репозиториям через context.
package tr

import (
	"context"

	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx возвращает e.ErrTransactionNotFound, если запись идёт вне Transactor.WithinTx.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok && tx != nil {
		return tx, nil
	}
	return nil, e.ErrTransactionNotFound
}
