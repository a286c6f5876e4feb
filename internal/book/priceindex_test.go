package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevelIndexAscendingBest(t *testing.T) {
	idx := newPriceLevelIndex(true)
	idx.insert(d("102"), newPriceLevel(d("102"), Ask))
	idx.insert(d("100"), newPriceLevel(d("100"), Ask))
	idx.insert(d("101"), newPriceLevel(d("101"), Ask))

	best, ok := idx.best()
	require.True(t, ok)
	assert.True(t, best.Equal(d("100")))
}

func TestPriceLevelIndexDescendingBest(t *testing.T) {
	idx := newPriceLevelIndex(false)
	idx.insert(d("100"), newPriceLevel(d("100"), Bid))
	idx.insert(d("102"), newPriceLevel(d("102"), Bid))
	idx.insert(d("101"), newPriceLevel(d("101"), Bid))

	best, ok := idx.best()
	require.True(t, ok)
	assert.True(t, best.Equal(d("102")))
}

func TestPriceLevelIndexNormalizesScale(t *testing.T) {
	idx := newPriceLevelIndex(true)
	level := newPriceLevel(d("100"), Ask)
	idx.insert(d("100"), level)

	got, ok := idx.get(d("100.00"))
	require.True(t, ok)
	assert.Same(t, level, got)
}

func TestPriceLevelIndexRemove(t *testing.T) {
	idx := newPriceLevelIndex(true)
	idx.insert(d("100"), newPriceLevel(d("100"), Ask))
	idx.remove(d("100"))

	_, ok := idx.get(d("100"))
	assert.False(t, ok)
	_, ok = idx.best()
	assert.False(t, ok)
}

func TestPriceLevelIndexIterPricesBestFirst(t *testing.T) {
	idx := newPriceLevelIndex(true)
	idx.insert(d("102"), newPriceLevel(d("102"), Ask))
	idx.insert(d("100"), newPriceLevel(d("100"), Ask))
	idx.insert(d("101"), newPriceLevel(d("101"), Ask))

	var seen []string
	idx.iterPrices(func(p Price) bool {
		seen = append(seen, p.String())
		return true
	})
	assert.Equal(t, []string{"100", "101", "102"}, seen)
}

func TestPriceLevelIndexIterPricesStopsEarly(t *testing.T) {
	idx := newPriceLevelIndex(true)
	idx.insert(d("100"), newPriceLevel(d("100"), Ask))
	idx.insert(d("101"), newPriceLevel(d("101"), Ask))

	var seen int
	idx.iterPrices(func(p Price) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}
