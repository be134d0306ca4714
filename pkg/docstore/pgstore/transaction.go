package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer - то, что нужно merge: пул для одиночных записей и pgx.Tx внутри пачки.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var batchTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// inTx выполняет пачку merge в одной транзакции. Ошибка fn или паника откатывают всё.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	err := pgx.BeginTxFunc(ctx, pool, batchTxOptions, fn)
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return fmt.Errorf("пакетная запись не выполнена: %w", wrapErr(err))
	}
	return err
}
