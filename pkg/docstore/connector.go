package docstore

import (
	"context"
	"errors"
	"sync"
)

// OpenFunc открывает соединение с конкретным бэкендом.
type OpenFunc func(ctx context.Context) (Store, error)

// Connector - явный жизненный цикл соединения: открывается один раз при первом
// Acquire, дальше отдаётся тот же Store. Неудачное открытие не кешируется.
type Connector struct {
	mu     sync.Mutex
	open   OpenFunc
	store  Store
	closed bool
}

var ErrClosed = errors.New("docstore: connector closed")

func NewConnector(open OpenFunc) *Connector {
	return &Connector{open: open}
}

func (c *Connector) Acquire(ctx context.Context) (Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.store != nil {
		return c.store, nil
	}
	store, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.store == nil {
		return nil
	}
	err := c.store.Close(ctx)
	c.store = nil
	return err
}

// Static - коннектор над уже открытым хранилищем (тесты, memory-драйвер).
func Static(store Store) *Connector {
	return &Connector{store: store, open: func(context.Context) (Store, error) { return store, nil }}
}
