package event

import (
	"sync"
	"testing"

	"github.com/hupe1980/navmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recorder) HandleEvent(ev core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []core.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestFeed_DuplicateSubscriberStoredOnce(t *testing.T) {
	f := NewFeed()
	r := &recorder{}

	assert.True(t, f.Subscribe(r))
	assert.False(t, f.Subscribe(r))
	assert.Equal(t, 1, f.Len())

	f.Publish(core.NewEvent(core.EventNavigated, "main"))
	assert.Len(t, r.types(), 1)

	assert.True(t, f.Unsubscribe(r))
	assert.False(t, f.Unsubscribe(r))
	assert.Equal(t, 0, f.Len())
}

func TestFeed_TypeFilter(t *testing.T) {
	f := NewFeed()
	r := &recorder{}
	f.Subscribe(r, core.EventNavigationFailed)

	f.Publish(core.NewEvent(core.EventNavigated, "main"))
	f.Publish(core.NewEvent(core.EventNavigationFailed, "main"))

	assert.Equal(t, []core.EventType{core.EventNavigationFailed}, r.types())
}

func TestFeed_SubscribeFuncAndCancel(t *testing.T) {
	f := NewFeed()
	var got []string
	id := f.SubscribeFunc(func(ev core.Event) { got = append(got, ev.Slot) })

	f.Publish(core.NewEvent(core.EventNavigated, "a"))
	require.True(t, f.Cancel(id))
	assert.False(t, f.Cancel(id))
	f.Publish(core.NewEvent(core.EventNavigated, "b"))

	assert.Equal(t, []string{"a"}, got)
}

func TestFeed_PanicIsolation(t *testing.T) {
	f := NewFeed()
	r := &recorder{}
	f.SubscribeFunc(func(core.Event) { panic("boom") })
	f.Subscribe(r)

	assert.NotPanics(t, func() {
		f.Publish(core.NewEvent(core.EventNavigated, "main"))
	})
	assert.Len(t, r.types(), 1)
}

func TestFeed_DeliveryOrder(t *testing.T) {
	f := NewFeed()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		f.SubscribeFunc(func(core.Event) { order = append(order, i) })
	}

	f.Publish(core.NewEvent(core.EventNavigating, "main"))
	assert.Equal(t, []int{0, 1, 2}, order)

	f.Clear()
	assert.Equal(t, 0, f.Len())
}
