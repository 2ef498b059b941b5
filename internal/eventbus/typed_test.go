package eventbus

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[int](0)
	ch := bus.Subscribe()
	bus.Publish(42)
	assert.Equal(t, 42, <-ch)
	bus.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New[string](1)
	ch := bus.Subscribe()
	bus.Publish("a")
	bus.Publish("b")
	assert.Equal(t, "a", <-ch)
	assert.Equal(t, uint64(1), bus.Dropped())
	bus.Close()
}

func TestBusHandleDrainsOnClose(t *testing.T) {
	bus := New[int](16)
	var sum atomic.Int64
	bus.Handle(func(v int) { sum.Add(int64(v)) })
	for i := 1; i <= 10; i++ {
		bus.Publish(i)
	}
	bus.Close()
	assert.Equal(t, int64(55), sum.Load())
}

func TestBusClose(t *testing.T) {
	bus := New[int](0)
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	_, ok := <-ch1
	assert.False(t, ok)
	_, ok = <-ch2
	assert.False(t, ok)

	// publishing and subscribing after close are harmless
	bus.Publish(1)
	ch3 := bus.Subscribe()
	_, ok = <-ch3
	assert.False(t, ok)
	require.NotPanics(t, func() {
		bus.Unsubscribe(ch1)
		bus.Close()
	})
}
