package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(id OrderId, qty string) *TradeOrder {
	return &TradeOrder{ID: id, RemainingQty: d(qty), InitialQty: d(qty)}
}

func TestPriceLevelFIFOOrder(t *testing.T) {
	lvl := newPriceLevel(d("100"), Bid)
	a := newTestOrder(NewOrderID(), "1")
	b := newTestOrder(NewOrderID(), "2")
	lvl.pushBack(a)
	lvl.pushBack(b)

	require.Len(t, lvl.Orders, 2)
	assert.Equal(t, a.ID, lvl.Orders[0].ID)
	assert.Equal(t, b.ID, lvl.Orders[1].ID)
}

func TestPriceLevelRemoveByIDPreservesOrder(t *testing.T) {
	lvl := newPriceLevel(d("100"), Bid)
	a, b, c := newTestOrder(NewOrderID(), "1"), newTestOrder(NewOrderID(), "1"), newTestOrder(NewOrderID(), "1")
	lvl.pushBack(a)
	lvl.pushBack(b)
	lvl.pushBack(c)

	removed, ok := lvl.removeByID(b.ID)
	require.True(t, ok)
	assert.Equal(t, b.ID, removed.ID)
	require.Len(t, lvl.Orders, 2)
	assert.Equal(t, a.ID, lvl.Orders[0].ID)
	assert.Equal(t, c.ID, lvl.Orders[1].ID)
}

func TestPriceLevelRemoveUnknownID(t *testing.T) {
	lvl := newPriceLevel(d("100"), Bid)
	lvl.pushBack(newTestOrder(NewOrderID(), "1"))
	_, ok := lvl.removeByID(NewOrderID())
	assert.False(t, ok)
}

func TestPriceLevelTotalQuantity(t *testing.T) {
	lvl := newPriceLevel(d("100"), Ask)
	lvl.pushBack(newTestOrder(NewOrderID(), "3"))
	lvl.pushBack(newTestOrder(NewOrderID(), "4.5"))
	assert.True(t, lvl.totalQuantity().Equal(d("7.5")))
}

func TestPriceLevelIsEmpty(t *testing.T) {
	lvl := newPriceLevel(d("100"), Bid)
	assert.True(t, lvl.isEmpty())
	o := newTestOrder(NewOrderID(), "1")
	lvl.pushBack(o)
	assert.False(t, lvl.isEmpty())
	lvl.removeByID(o.ID)
	assert.True(t, lvl.isEmpty())
}
