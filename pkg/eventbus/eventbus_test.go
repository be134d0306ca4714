package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pinged struct{}

func (pinged) Name() string { return "pinged" }

func TestPublish_CallsEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("pinged", func(context.Context, Event) error {
			calls.Add(1)
			return nil
		})
	}
	bus.Subscribe("other", func(context.Context, Event) error {
		t.Error("чужой подписчик не должен вызываться")
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestPublish_HandlerOutlivesCanceledContext(t *testing.T) {
	bus := New(zap.NewNop())
	var canceled atomic.Bool
	bus.Subscribe("pinged", func(ctx context.Context, _ Event) error {
		time.Sleep(10 * time.Millisecond)
		canceled.Store(ctx.Err() != nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pinged{})
	cancel()
	bus.Wait()

	assert.False(t, canceled.Load())
}

func TestPublish_ErrorDoesNotStopOthers(t *testing.T) {
	bus := New(zap.NewNop())
	var ok atomic.Bool
	bus.Subscribe("pinged", func(context.Context, Event) error { return errors.New("boom") })
	bus.Subscribe("pinged", func(context.Context, Event) error {
		ok.Store(true)
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	bus.Wait()

	assert.True(t, ok.Load())
}
