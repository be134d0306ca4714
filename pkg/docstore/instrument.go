package docstore

import (
	"context"
	"errors"
	"time"

	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/metrics"
)

// Instrument пишет в prometheus длительность и исход каждой операции.
func Instrument(next Store) Store {
	base := &instrumentedStore{next: next}
	if b, ok := next.(Batcher); ok {
		return &instrumentedBatchStore{instrumentedStore: base, batcher: b}
	}
	return base
}

type instrumentedStore struct {
	next Store
}

func (s *instrumentedStore) Get(ctx context.Context, collection, id string) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.next.Get(ctx, collection, id)
	observe("get", collection, start, err)
	return snap, err
}

func (s *instrumentedStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	start := time.Now()
	out, err := s.next.Query(ctx, q)
	observe("query", q.Collection, start, err)
	return out, err
}

func (s *instrumentedStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, collection, data)
	observe("create", collection, start, err)
	return id, err
}

func (s *instrumentedStore) Put(ctx context.Context, collection, id string, data Document) error {
	start := time.Now()
	err := s.next.Put(ctx, collection, id, data)
	observe("put", collection, start, err)
	return err
}

func (s *instrumentedStore) Merge(ctx context.Context, collection, id string, patch Document) error {
	start := time.Now()
	err := s.next.Merge(ctx, collection, id, patch)
	observe("merge", collection, start, err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	observe("ping", "", start, err)
	return err
}

func (s *instrumentedStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

type instrumentedBatchStore struct {
	*instrumentedStore
	batcher Batcher
}

func (s *instrumentedBatchStore) RunBatch(ctx context.Context, fn func(b Batch) error) error {
	start := time.Now()
	err := s.batcher.RunBatch(ctx, fn)
	observe("batch", "", start, err)
	return err
}

func observe(op, collection string, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = metrics.ResultNotFound
	case errors.Is(err, ErrUnavailable), apperrors.IsUnavailable(err):
		result = metrics.ResultUnavailable
	default:
		result = metrics.ResultError
	}
	metrics.ObserveStoreOp(op, collection, result, time.Since(start))
}
