package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "gear-guard/pkg/errors"
)

// Timeouts - границы ожидания ответа от хранилища. Lookup - чтение одного документа.
type Timeouts struct {
	Default time.Duration
	Lookup  time.Duration
}

// WithTimeout ограничивает каждую операцию по времени. Таймаут или недоступность
// бэкенда превращаются в *apperrors.UnavailableError; повторов нет.
func WithTimeout(next Store, t Timeouts) Store {
	if t.Default <= 0 {
		t.Default = 4500 * time.Millisecond
	}
	if t.Lookup <= 0 {
		t.Lookup = t.Default
	}
	base := &timeoutStore{next: next, timeouts: t}
	if b, ok := next.(Batcher); ok {
		return &timeoutBatchStore{timeoutStore: base, batcher: b}
	}
	return base
}

type timeoutStore struct {
	next     Store
	timeouts Timeouts
}

func (s *timeoutStore) Get(ctx context.Context, collection, id string) (*Snapshot, error) {
	return within(ctx, s.timeouts.Lookup, "Load "+collection, func(ctx context.Context) (*Snapshot, error) {
		return s.next.Get(ctx, collection, id)
	})
}

func (s *timeoutStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	return within(ctx, s.timeouts.Default, "Load "+q.Collection, func(ctx context.Context) ([]Snapshot, error) {
		return s.next.Query(ctx, q)
	})
}

func (s *timeoutStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	return within(ctx, s.timeouts.Default, "Create "+collection, func(ctx context.Context) (string, error) {
		return s.next.Create(ctx, collection, data)
	})
}

func (s *timeoutStore) Put(ctx context.Context, collection, id string, data Document) error {
	return s.run(ctx, s.timeouts.Default, "Save "+collection, func(ctx context.Context) error {
		return s.next.Put(ctx, collection, id, data)
	})
}

func (s *timeoutStore) Merge(ctx context.Context, collection, id string, patch Document) error {
	return s.run(ctx, s.timeouts.Default, "Update "+collection, func(ctx context.Context) error {
		return s.next.Merge(ctx, collection, id, patch)
	})
}

func (s *timeoutStore) Ping(ctx context.Context) error {
	return s.run(ctx, s.timeouts.Lookup, "Ping", s.next.Ping)
}

func (s *timeoutStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

type timeoutBatchStore struct {
	*timeoutStore
	batcher Batcher
}

func (s *timeoutBatchStore) RunBatch(ctx context.Context, fn func(b Batch) error) error {
	return s.run(ctx, s.timeouts.Default, "Batch update", func(ctx context.Context) error {
		return s.batcher.RunBatch(ctx, fn)
	})
}

func (s *timeoutStore) run(parent context.Context, limit time.Duration, label string, call func(ctx context.Context) error) error {
	_, err := within(parent, limit, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, call(ctx)
	})
	return err
}

type result[T any] struct {
	value T
	err   error
}

// within выполняет call в отдельной горутине: бэкенд может не уважать контекст,
// а вызывающий должен получить ответ не позже limit. Опоздавший ответ выбрасывается.
func within[T any](parent context.Context, limit time.Duration, label string, call func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(parent, limit)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		value, err := call(ctx)
		done <- result[T]{value: value, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if err := classify(parent, label, r.err); err != nil {
			return zero, err
		}
		return r.value, nil
	case <-ctx.Done():
		if parent.Err() != nil {
			return zero, parent.Err()
		}
		return zero, apperrors.NewUnavailableError(label, fmt.Errorf("%s timed out: %w", label, ErrUnavailable))
	}
}

func classify(parent context.Context, label string, err error) error {
	if err == nil {
		return nil
	}
	if parent.Err() != nil {
		return err
	}
	if apperrors.IsUnavailable(err) {
		return err
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewUnavailableError(label, err)
	}
	return err
}
