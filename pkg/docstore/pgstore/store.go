// Package pgstore хранит документы в одной таблице PostgreSQL (collection, id, data JSONB).
// Поддерживает атомарную запись нескольких документов через транзакцию.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gear-guard/pkg/docstore"
)

const documentsTable = "documents"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func Connect(ctx context.Context, dsn string, migrate bool, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула соединений к БД: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось пинговать БД: %w", wrapErr(err))
	}
	if migrate {
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	logger.Info("✅ Подключено к PostgreSQL")
	return New(pool, logger), nil
}

func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Snapshot, error) {
	query, args, err := psql.Select("data").From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var raw []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, wrapErr(err)
	}
	data, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &docstore.Snapshot{ID: id, Data: data}, nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	query, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []docstore.Snapshot
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Snapshot{ID: id, Data: data})
	}
	return out, wrapErr(rows.Err())
}

// buildSelect переводит docstore.Query в SQL. Имена полей уже проверены Validate,
// поэтому их можно подставлять в ORDER BY напрямую.
func buildSelect(q docstore.Query) (string, []interface{}, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	builder := psql.Select("id", "data").From(documentsTable).Where(sq.Eq{"collection": q.Collection})
	for _, f := range q.Filters {
		switch f.Op {
		case docstore.OpEq:
			payload, err := json.Marshal(map[string]any{f.Field: f.Value})
			if err != nil {
				return "", nil, err
			}
			builder = builder.Where("data @> ?::jsonb", string(payload))
		case docstore.OpIn:
			builder = builder.Where("data->>(?::text) = ANY(?::text[])", f.Field, f.Value.([]string))
		}
	}
	for _, o := range q.OrderBy {
		if o.Desc {
			builder = builder.OrderBy(fmt.Sprintf("data->'%s' DESC NULLS LAST", o.Field))
		} else {
			builder = builder.OrderBy(fmt.Sprintf("data->'%s' ASC NULLS FIRST", o.Field))
		}
	}
	builder = builder.OrderBy("id ASC")
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}
	return builder.ToSql()
}

func (s *Store) Create(ctx context.Context, collection string, data docstore.Document) (string, error) {
	payload, err := encode(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	query, args, err := psql.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, id, sq.Expr("?::jsonb", payload)).
		ToSql()
	if err != nil {
		return "", err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return "", wrapErr(err)
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, data docstore.Document) error {
	payload, err := encode(data)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, id, sq.Expr("?::jsonb", payload)).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = " + documentsTable + ".data || EXCLUDED.data").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return wrapErr(err)
}

func (s *Store) Merge(ctx context.Context, collection, id string, patch docstore.Document) error {
	return merge(ctx, s.pool, collection, id, patch)
}

func merge(ctx context.Context, q execer, collection, id string, patch docstore.Document) error {
	payload, err := encode(patch)
	if err != nil {
		return err
	}
	query, args, err := psql.Update(documentsTable).
		Set("data", sq.Expr("data || ?::jsonb", payload)).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// RunBatch - все merge внутри одной транзакции.
func (s *Store) RunBatch(ctx context.Context, fn func(b docstore.Batch) error) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&txBatch{ctx: ctx, tx: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return wrapErr(s.pool.Ping(ctx))
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

type txBatch struct {
	ctx context.Context
	tx  pgx.Tx
}

func (b *txBatch) Merge(collection, id string, patch docstore.Document) error {
	if err := merge(b.ctx, b.tx, collection, id, patch); err != nil {
		return fmt.Errorf("%s/%s: %w", collection, id, err)
	}
	return nil
}

func encode(doc docstore.Document) (string, error) {
	if doc == nil {
		doc = docstore.Document{}
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("не удалось сериализовать документ: %w", err)
	}
	return string(payload), nil
}

func decode(raw []byte) (docstore.Document, error) {
	data := docstore.Document{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("не удалось разобрать документ: %w", err)
	}
	return data, nil
}

// wrapErr помечает ошибки соединения как docstore.ErrUnavailable.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}
	return err
}

func isConnectivity(err error) bool {
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	return pgconn.Timeout(err) || errors.As(err, &connectErr) || errors.As(err, &netErr)
}
