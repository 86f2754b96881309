package websocket

import (
	"fmt"
	"sync"
	"testing"

	"datasense-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	name string
}

func (f *fakeChannel) Send(payload []byte) error { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry(logger.NewNopLogger())
	ch := &fakeChannel{name: "a"}

	r.Register("c1", ch)

	got, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Same(t, ch, got)

	_, ok = r.Lookup("ghost")
	assert.False(t, ok)
}

func TestRegistry_ReplaceKeepsLatest(t *testing.T) {
	r := NewRegistry(logger.NewNopLogger())
	a := &fakeChannel{name: "a"}
	b := &fakeChannel{name: "b"}

	r.Register("c1", a)
	r.Register("c1", b)

	got, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry(logger.NewNopLogger())
	r.Register("c1", &fakeChannel{})

	r.Unregister("c1")
	_, ok := r.Lookup("c1")
	assert.False(t, ok)

	// Unregistering an unknown id is a no-op.
	assert.NotPanics(t, func() { r.Unregister("c1") })
}

func TestRegistry_UnregisterChannelIgnoresSuperseded(t *testing.T) {
	r := NewRegistry(logger.NewNopLogger())
	old := &fakeChannel{name: "old"}
	current := &fakeChannel{name: "current"}

	r.Register("c1", old)
	r.Register("c1", current)

	assert.False(t, r.UnregisterChannel("c1", old))
	got, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Same(t, current, got)

	assert.True(t, r.UnregisterChannel("c1", current))
	_, ok = r.Lookup("c1")
	assert.False(t, ok)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry(logger.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("client-%d", i%10)
			ch := &fakeChannel{name: id}
			r.Register(id, ch)
			r.Lookup(id)
			if i%3 == 0 {
				r.UnregisterChannel(id, ch)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Count(), 10)
}

func TestClient_SendAfterClose(t *testing.T) {
	c := NewClient(nil, "c1", logger.NewNopLogger())

	require.NoError(t, c.Send([]byte("one")))
	c.Close()
	c.Close()

	assert.ErrorIs(t, c.Send([]byte("two")), ErrChannelClosed)
}

func TestClient_SendBufferFull(t *testing.T) {
	c := NewClient(nil, "c1", logger.NewNopLogger())

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, c.Send([]byte("x")))
	}
	assert.ErrorIs(t, c.Send([]byte("overflow")), ErrSendBufferFull)
}
