package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnector_OpensOnce(t *testing.T) {
	var (
		mu    sync.Mutex
		opens int
	)
	c := NewConnector(func(context.Context) (Store, error) {
		mu.Lock()
		defer mu.Unlock()
		opens++
		return NewMemoryStore(), nil
	})

	var wg sync.WaitGroup
	stores := make([]Store, 8)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := c.Acquire(context.Background())
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, opens)
	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
}

func TestConnector_FailedOpenIsRetried(t *testing.T) {
	attempts := 0
	c := NewConnector(func(context.Context) (Store, error) {
		attempts++
		if attempts == 1 {
			return nil, ErrUnavailable
		}
		return NewMemoryStore(), nil
	})

	_, err := c.Acquire(context.Background())
	require.True(t, errors.Is(err, ErrUnavailable))

	s, err := c.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, 2, attempts)
}

func TestConnector_ClosedRefusesAcquire(t *testing.T) {
	c := Static(NewMemoryStore())
	require.NoError(t, c.Close(context.Background()))

	_, err := c.Acquire(context.Background())
	assert.True(t, errors.Is(err, ErrClosed))
}
