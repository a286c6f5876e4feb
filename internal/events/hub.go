// Package events fans out order book activity to subscribers. It is
// the concrete book.EventSink used in production; tests use book.NopSink
// or a local recorder instead.
package events

import (
	"sync"

	"github.com/google/uuid"

	"fenrir/internal/book"
	"fenrir/internal/registry"
)

// Kind discriminates the three event shapes a subscriber can receive.
type Kind int

const (
	KindOrderAdded Kind = iota
	KindOrderRemoved
	KindTradeExecuted
)

// Event wraps one book-level event with the trading pair it occurred
// on, so a subscriber listening across every market can tell them apart.
type Event struct {
	Pair          registry.TradingPair
	Kind          Kind
	OrderAdded    book.OrderAddedEvent
	OrderRemoved  book.OrderRemovedEvent
	TradeExecuted book.TradeExecution
}

// Hub fans every published event out to all current subscribers. A
// subscriber's queue is unbounded: a slow reader falls behind but
// never loses an event and never blocks publish beyond handing it off
// to the subscriber's own forwarding goroutine.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan<- Event
}

// NewHub builds an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[uuid.UUID]chan<- Event)}
}

// Subscribe registers a new listener and returns its id plus the
// channel it should drain. The channel is backed by a growing internal
// buffer, not a fixed-capacity one, so the subscriber never misses an
// event no matter how far behind it falls. Unsubscribe must be called
// to release it.
func (h *Hub) Subscribe() (uuid.UUID, <-chan Event) {
	id := book.NewOrderID()
	in, out := newUnboundedChan()
	h.mu.Lock()
	h.subscribers[id] = in
	h.mu.Unlock()
	return id, out
}

// Unsubscribe removes a listener and closes its channel, which drains
// whatever it had already buffered before closing the read side. Safe
// to call more than once for the same id.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// newUnboundedChan returns a send side and a receive side connected by
// a goroutine holding a slice that grows to fit whatever the sender
// produces faster than the receiver drains. Closing in flushes any
// buffered events and then closes out.
func newUnboundedChan() (chan<- Event, <-chan Event) {
	in := make(chan Event)
	out := make(chan Event)

	go func() {
		defer close(out)
		var queue []Event

		for {
			if len(queue) == 0 {
				e, ok := <-in
				if !ok {
					return
				}
				queue = append(queue, e)
				continue
			}

			select {
			case e, ok := <-in:
				if !ok {
					for _, queued := range queue {
						out <- queued
					}
					return
				}
				queue = append(queue, e)
			case out <- queue[0]:
				queue = queue[1:]
			}
		}
	}()

	return in, out
}

// ForMarket binds the hub to one trading pair, giving back the
// book.EventSink that callers hand to Registry.AddMarket so every event
// raised by that book's matching is tagged with its pair on the way out.
func (h *Hub) ForMarket(pair registry.TradingPair) book.EventSink {
	return &marketSink{hub: h, pair: pair}
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		ch <- e
	}
}

// marketSink adapts Hub into a book.EventSink tagged with a fixed pair.
type marketSink struct {
	hub  *Hub
	pair registry.TradingPair
}

func (s *marketSink) OrderAdded(e book.OrderAddedEvent) {
	s.hub.publish(Event{Pair: s.pair, Kind: KindOrderAdded, OrderAdded: e})
}

func (s *marketSink) OrderRemoved(e book.OrderRemovedEvent) {
	s.hub.publish(Event{Pair: s.pair, Kind: KindOrderRemoved, OrderRemoved: e})
}

func (s *marketSink) TradeExecuted(e book.TradeExecution) {
	s.hub.publish(Event{Pair: s.pair, Kind: KindTradeExecuted, TradeExecuted: e})
}
