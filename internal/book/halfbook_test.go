package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHalfBookAddOrderWrongSidePanics(t *testing.T) {
	h := newHalfBook(Ask)
	assert.Panics(t, func() {
		h.addOrder(d("100"), newTestOrder(NewOrderID(), "1"))
	})
}

func TestHalfBookMatchOrderFIFOWithinLevel(t *testing.T) {
	h := newHalfBook(Ask)
	a := newTestOrder(NewOrderID(), "3")
	a.Side = Ask
	b := newTestOrder(NewOrderID(), "2")
	b.Side = Ask
	h.addOrder(d("100"), a)
	h.addOrder(d("100"), b)

	incoming := &TradeOrder{ID: NewOrderID(), Side: Bid, RemainingQty: d("4"), InitialQty: d("4")}
	trades, removed := h.matchOrder(incoming, d("100"), staticNow())

	require.Len(t, trades, 2)
	assert.True(t, trades[0].Qty.Equal(d("3")))
	assert.True(t, trades[1].Qty.Equal(d("1")))
	require.Len(t, removed, 1)
	assert.Equal(t, a.ID, removed[0])
	assert.True(t, incoming.RemainingQty.IsZero())

	level, ok := h.index.get(d("100"))
	require.True(t, ok)
	assert.True(t, level.Orders[0].RemainingQty.Equal(d("1")))
}

func TestHalfBookMatchOrderEmptiesLevelOnExactFill(t *testing.T) {
	h := newHalfBook(Ask)
	a := newTestOrder(NewOrderID(), "5")
	a.Side = Ask
	h.addOrder(d("100"), a)

	incoming := &TradeOrder{ID: NewOrderID(), Side: Bid, RemainingQty: d("5"), InitialQty: d("5")}
	_, removed := h.matchOrder(incoming, d("100"), staticNow())

	require.Len(t, removed, 1)
	_, ok := h.bestPrice()
	assert.False(t, ok)
}

func TestHalfBookAvailableQuantityRespectsDirection(t *testing.T) {
	h := newHalfBook(Ask)
	low := newTestOrder(NewOrderID(), "3")
	low.Side = Ask
	high := newTestOrder(NewOrderID(), "2")
	high.Side = Ask
	h.addOrder(d("50"), low)
	h.addOrder(d("51"), high)

	assert.True(t, h.availableQuantity(d("50")).Equal(d("3")))
	assert.True(t, h.availableQuantity(d("51")).Equal(d("5")))
}

func TestHalfBookRemoveOrderEmptiesLevel(t *testing.T) {
	h := newHalfBook(Bid)
	o := newTestOrder(NewOrderID(), "1")
	o.Side = Bid
	h.addOrder(d("100"), o)

	removed, ok := h.removeOrder(d("100"), o.ID)
	require.True(t, ok)
	assert.Equal(t, o.ID, removed.ID)
	assert.Equal(t, 0, h.depth())
}

func staticNow() Timestamp {
	return Timestamp{}
}
