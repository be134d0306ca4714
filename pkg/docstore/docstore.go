// Package docstore - минимальный контракт документного хранилища:
// коллекции документов, чтение по id, запросы с фильтром/сортировкой/лимитом,
// создание с генерируемым id и частичное обновление (merge).
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound    = errors.New("docstore: document not found")
	ErrUnavailable = errors.New("docstore: store unavailable")
	ErrInvalid     = errors.New("docstore: invalid query")
)

// Document - содержимое документа без id. Значения: string, float64, bool, nil,
// []string, []any, map[string]any.
type Document map[string]any

// Snapshot - прочитанный документ.
type Snapshot struct {
	ID   string
	Data Document
}

type Operator string

const (
	OpEq Operator = "=="
	OpIn Operator = "in"
)

type Filter struct {
	Field string
	Op    Operator
	Value any
}

type Order struct {
	Field string
	Desc  bool
}

type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    []Order
	Limit      int
}

// Where добавляет фильтр на равенство.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpEq, Value: value})
	return q
}

// WhereIn добавляет фильтр "поле входит в набор".
func (q Query) WhereIn(field string, values ...string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpIn, Value: values})
	return q
}

func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), Order{Field: field, Desc: desc})
	return q
}

func (q Query) Take(limit int) Query {
	q.Limit = limit
	return q
}

func From(collection string) Query {
	return Query{Collection: collection}
}

type Store interface {
	Get(ctx context.Context, collection, id string) (*Snapshot, error)
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	// Create сохраняет документ под сгенерированным id.
	Create(ctx context.Context, collection string, data Document) (string, error)
	// Put - upsert с merge под известным id.
	Put(ctx context.Context, collection, id string, data Document) error
	// Merge обновляет только переданные поля; ErrNotFound, если документа нет.
	Merge(ctx context.Context, collection, id string, patch Document) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Batch - набор merge-операций, применяемых атомарно.
type Batch interface {
	Merge(collection, id string, patch Document) error
}

// Batcher реализуют хранилища с атомарной записью нескольких документов.
type Batcher interface {
	RunBatch(ctx context.Context, fn func(b Batch) error) error
}

var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate проверяет имена полей и операторы до обращения к бэкенду.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: collection is required", ErrInvalid)
	}
	for _, f := range q.Filters {
		if !fieldNameRe.MatchString(f.Field) {
			return fmt.Errorf("%w: bad field name %q", ErrInvalid, f.Field)
		}
		switch f.Op {
		case OpEq:
		case OpIn:
			if _, ok := f.Value.([]string); !ok {
				return fmt.Errorf("%w: %q in-filter expects []string", ErrInvalid, f.Field)
			}
		default:
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalid, f.Op)
		}
	}
	for _, o := range q.OrderBy {
		if !fieldNameRe.MatchString(o.Field) {
			return fmt.Errorf("%w: bad order field %q", ErrInvalid, o.Field)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalid)
	}
	return nil
}

// ValidFieldName - имя поля пригодно для запросов.
func ValidFieldName(name string) bool {
	return fieldNameRe.MatchString(name)
}
