package book

import (
	"github.com/tidwall/btree"
)

// defaultPriceLevelCapacity sizes the sparse map to amortize rehash
// cost across a typical instrument's distinct price levels.
const defaultPriceLevelCapacity = 10_000

// priceLevelIndex is the sparse price->level map plus the ordered
// price set used for O(log n) best-price lookup. Both halves are
// co-mutated by insert/remove; a single ordered map would also work,
// but keeping the map separate avoids paying tree-traversal cost on
// the hot by-price lookup path.
type priceLevelIndex struct {
	levels  map[string]*PriceLevel
	ordered *btree.BTreeG[Price]
}

func newPriceLevelIndex(ascending bool) *priceLevelIndex {
	var less func(a, b Price) bool
	if ascending {
		less = func(a, b Price) bool { return a.Cmp(b) < 0 }
	} else {
		less = func(a, b Price) bool { return a.Cmp(b) > 0 }
	}
	return &priceLevelIndex{
		levels:  make(map[string]*PriceLevel, defaultPriceLevelCapacity),
		ordered: btree.NewBTreeG(less),
	}
}

func (idx *priceLevelIndex) get(price Price) (*PriceLevel, bool) {
	lvl, ok := idx.levels[normalizePrice(price)]
	return lvl, ok
}

func (idx *priceLevelIndex) insert(price Price, level *PriceLevel) {
	idx.levels[normalizePrice(price)] = level
	idx.ordered.Set(price)
}

func (idx *priceLevelIndex) remove(price Price) {
	delete(idx.levels, normalizePrice(price))
	idx.ordered.Delete(price)
}

// best returns the first price in iteration order: min for an
// ascending index (asks), max for a descending one (bids).
func (idx *priceLevelIndex) best() (Price, bool) {
	return idx.ordered.Min()
}

func (idx *priceLevelIndex) len() int {
	return idx.ordered.Len()
}

// iterPrices walks prices best-first, yielding until fn returns false.
func (idx *priceLevelIndex) iterPrices(fn func(Price) bool) {
	idx.ordered.Scan(fn)
}
