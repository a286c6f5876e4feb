package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/book"
	"fenrir/internal/registry"
)

func TestSubscribePublishUnsubscribe(t *testing.T) {
	h := NewHub()
	pair := registry.NewTradingPair("BTC", "USD")
	sink := h.ForMarket(pair)

	id, ch := h.Subscribe()
	sink.OrderAdded(book.OrderAddedEvent{Price: book.Price{}})

	select {
	case e := <-ch:
		assert.Equal(t, KindOrderAdded, e.Kind)
		assert.Equal(t, pair, e.Pair)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	h.Unsubscribe(id)
	_, ok := <-ch
	assert.False(t, ok, "channel must be closed after unsubscribe")
}

func TestUnsubscribedListenerReceivesNothing(t *testing.T) {
	h := NewHub()
	pair := registry.NewTradingPair("BTC", "USD")
	sink := h.ForMarket(pair)

	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	sink.TradeExecuted(book.TradeExecution{})

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	default:
	}
}

func TestSubscriberQueueGrowsPastFixedCapacity(t *testing.T) {
	h := NewHub()
	pair := registry.NewTradingPair("BTC", "USD")
	sink := h.ForMarket(pair)

	_, ch := h.Subscribe()

	const n = 10_000
	for i := 0; i < n; i++ {
		sink.TradeExecuted(book.TradeExecution{})
	}

	for i := 0; i < n; i++ {
		select {
		case _, ok := <-ch:
			require.True(t, ok, "channel closed early at event %d", i)
		case <-time.After(5 * time.Second):
			t.Fatalf("lost event %d: publish must never drop for a slow subscriber", i)
		}
	}
}

func TestMultipleSubscribersAllReceive(t *testing.T) {
	h := NewHub()
	pair := registry.NewTradingPair("BTC", "USD")
	sink := h.ForMarket(pair)

	_, ch1 := h.Subscribe()
	_, ch2 := h.Subscribe()

	sink.OrderRemoved(book.OrderRemovedEvent{})

	require.Eventually(t, func() bool {
		select {
		case <-ch1:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		select {
		case <-ch2:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}
