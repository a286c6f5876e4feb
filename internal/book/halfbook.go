package book

import "github.com/shopspring/decimal"

// HalfBook is one side of an order book: bids or asks. It owns the
// price-level index for that side and the matching/insertion logic
// that operates at a single price level.
type HalfBook struct {
	side  Side
	index *priceLevelIndex
}

// newHalfBook builds a half-book. Asks are iterated ascending (best =
// lowest price); bids are iterated descending (best = highest price).
func newHalfBook(side Side) *HalfBook {
	return &HalfBook{side: side, index: newPriceLevelIndex(side == Ask)}
}

// addOrder appends order to the FIFO at price, creating the level if
// absent. order.Side must equal the half-book's side.
func (h *HalfBook) addOrder(price Price, order *TradeOrder) {
	if order.Side != h.side {
		panic("book: order side does not match half-book side")
	}
	if level, ok := h.index.get(price); ok {
		level.pushBack(order)
		return
	}
	level := newPriceLevel(price, h.side)
	level.pushBack(order)
	h.index.insert(price, level)
}

// removeOrder deletes an order by id at price, removing the level if
// it becomes empty. Returns (nil, false) if the price or id is absent;
// never mutates on a miss.
func (h *HalfBook) removeOrder(price Price, id OrderId) (*TradeOrder, bool) {
	level, ok := h.index.get(price)
	if !ok {
		return nil, false
	}
	order, ok := level.removeByID(id)
	if !ok {
		return nil, false
	}
	if level.isEmpty() {
		h.index.remove(price)
	}
	return order, true
}

// matchOrder consumes liquidity at exactly price, in FIFO order, until
// either incoming is exhausted or the level empties. Trade price is
// always the resting maker's level price. Partially filled makers stay
// at the head of the FIFO, preserving time priority. An empty or
// absent level yields no executions. The second return value lists,
// in match order, the makers removed from the book because they were
// fully filled; callers use it to emit OrderRemoved after the whole
// batch of TradeExecuted events.
func (h *HalfBook) matchOrder(incoming *TradeOrder, price Price, now Timestamp) ([]TradeExecution, []OrderId) {
	level, ok := h.index.get(price)
	if !ok {
		return nil, nil
	}

	var executions []TradeExecution
	var removed []OrderId
	takerSide := h.side.Opposite()

	for !incoming.RemainingQty.IsZero() && !level.isEmpty() {
		maker := level.Orders[0]
		matchQty := maker.fillAgainst(incoming, price, now)

		executions = append(executions, TradeExecution{
			Qty:       matchQty,
			Price:     price,
			TakerID:   incoming.ID,
			MakerID:   maker.ID,
			TakerSide: takerSide,
			Timestamp: now,
		})

		if maker.RemainingQty.IsZero() {
			level.Orders = level.Orders[1:]
			removed = append(removed, maker.ID)
		}
	}

	if level.isEmpty() {
		h.index.remove(price)
	}
	return executions, removed
}

// bestPrice returns the min price for Ask, max price for Bid.
func (h *HalfBook) bestPrice() (Price, bool) {
	return h.index.best()
}

// availableQuantity sums remaining_qty across every level priced no
// worse than targetPrice: price <= target for Ask, price >= target
// for Bid. Used for FOK feasibility checks.
func (h *HalfBook) availableQuantity(targetPrice Price) Quantity {
	total := decimal.Zero
	h.index.iterPrices(func(p Price) bool {
		if h.side == Ask {
			if p.GreaterThan(targetPrice) {
				return false
			}
		} else {
			if p.LessThan(targetPrice) {
				return false
			}
		}
		level, _ := h.index.get(p)
		total = total.Add(level.totalQuantity())
		return true
	})
	return total
}

func (h *HalfBook) depth() int {
	return h.index.len()
}

// levelsBestFirst returns a snapshot of (price, aggregated-qty) pairs,
// ordered best price first.
func (h *HalfBook) levelsBestFirst() []PriceLevelSummary {
	var out []PriceLevelSummary
	h.index.iterPrices(func(p Price) bool {
		level, _ := h.index.get(p)
		out = append(out, PriceLevelSummary{Price: p, Qty: level.totalQuantity()})
		return true
	})
	return out
}

// volumeAt returns the aggregated remaining quantity resting at
// exactly price, or zero if no level exists there.
func (h *HalfBook) volumeAt(price Price) Quantity {
	level, ok := h.index.get(price)
	if !ok {
		return decimal.Zero
	}
	return level.totalQuantity()
}

// PriceLevelSummary is one row of a book snapshot.
type PriceLevelSummary struct {
	Price Price
	Qty   Quantity
}
