package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore - хранилище в памяти процесса. Используется в тестах и при STORE_DRIVER=memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	newID       func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		newID:       uuid.NewString,
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Snapshot{ID: id, Data: Clone(doc)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Snapshot
	for id, doc := range s.collections[q.Collection] {
		if matches(doc, q.Filters) {
			out = append(out, Snapshot{ID: id, Data: Clone(doc)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c := Compare(out[i].Data[o.Field], out[j].Data[o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		// детерминированный порядок при равенстве
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		value, ok := doc[f.Field]
		switch f.Op {
		case OpEq:
			if !ok || !Equal(value, f.Value) {
				return false
			}
		case OpIn:
			found := false
			for _, candidate := range f.Value.([]string) {
				if ok && Equal(value, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.collection(collection)[id] = Clone(data)
	return id, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, data Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collection(collection)
	existing, ok := docs[id]
	if !ok {
		existing = Document{}
		docs[id] = existing
	}
	for k, v := range data {
		existing[k] = cloneValue(v)
	}
	return nil
}

func (s *MemoryStore) Merge(ctx context.Context, collection, id string, patch Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mergeLocked(collection, id, patch)
}

func (s *MemoryStore) mergeLocked(collection, id string, patch Document) error {
	existing, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		existing[k] = cloneValue(v)
	}
	return nil
}

// RunBatch применяет все merge-операции под одной блокировкой: либо все, либо ни одной.
func (s *MemoryStore) RunBatch(ctx context.Context, fn func(b Batch) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := &memoryBatch{}
	if err := fn(batch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range batch.ops {
		if _, ok := s.collections[op.collection][op.id]; !ok {
			return fmt.Errorf("%s/%s: %w", op.collection, op.id, ErrNotFound)
		}
	}
	for _, op := range batch.ops {
		_ = s.mergeLocked(op.collection, op.id, op.patch)
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func (s *MemoryStore) collection(name string) map[string]Document {
	docs, ok := s.collections[name]
	if !ok {
		docs = make(map[string]Document)
		s.collections[name] = docs
	}
	return docs
}

type memoryOp struct {
	collection string
	id         string
	patch      Document
}

type memoryBatch struct {
	ops []memoryOp
}

func (b *memoryBatch) Merge(collection, id string, patch Document) error {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, patch: Clone(patch)})
	return nil
}
