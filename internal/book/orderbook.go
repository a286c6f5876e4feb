package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// orderLocation records where a resting order lives so cancellation
// doesn't need to scan both half-books.
type orderLocation struct {
	side  Side
	price Price
}

// OrderBook is the full book for one instrument: two half-books plus
// an id->location index. It is single-threaded per instance: no
// internal locking, no concurrent writers.
type OrderBook struct {
	bids *HalfBook
	asks *HalfBook

	orderLoc map[OrderId]orderLocation
	sink     EventSink

	now func() Timestamp
}

// NewOrderBook builds an empty book. A nil sink is replaced with
// NopSink so Place/Cancel never need a nil check.
func NewOrderBook(sink EventSink) *OrderBook {
	if sink == nil {
		sink = NopSink{}
	}
	return &OrderBook{
		bids:     newHalfBook(Bid),
		asks:     newHalfBook(Ask),
		orderLoc: make(map[OrderId]orderLocation),
		sink:     sink,
		now:      time.Now,
	}
}

func (b *OrderBook) halfBook(side Side) *HalfBook {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// Place submits a request. It returns the synchronous OrderResult plus
// every trade execution generated. No partial mutation escapes a
// rejected submission.
func (b *OrderBook) Place(r OrderRequest) (OrderResult, []TradeExecution) {
	now := b.now()
	opp := b.halfBook(r.Side.Opposite())

	// Step 1: FOK feasibility.
	if r.OrderType.Kind == FOK {
		limitPrice, _ := r.OrderType.Price()
		if opp.availableQuantity(limitPrice).LessThan(r.Qty) {
			return OrderResult{
				OrderID:      r.ID,
				Side:         r.Side,
				OrderType:    r.OrderType,
				InitialQty:   r.Qty,
				RemainingQty: r.Qty,
				Status:       Cancelled,
			}, nil
		}
	}

	// Step 2: materialize taker.
	taker := newTradeOrder(r, now)

	// Step 3: aggressive matching loop.
	var executions []TradeExecution
	var removedMakers []OrderId
	for taker.RemainingQty.Sign() > 0 {
		best, ok := opp.bestPrice()
		if !ok {
			break
		}
		if !eligible(r.OrderType, r.Side, best) {
			break
		}

		matches, removed := opp.matchOrder(taker, best, now)
		executions = append(executions, matches...)
		removedMakers = append(removedMakers, removed...)
	}

	// Events appear in the order TradeExecuted*, OrderRemoved
	// (maker full-fill)*, OrderAdded (taker rest)?, batched per submission.
	for _, m := range executions {
		b.sink.TradeExecuted(m)
	}
	for _, makerID := range removedMakers {
		loc, ok := b.orderLoc[makerID]
		if !ok {
			continue
		}
		delete(b.orderLoc, makerID)
		b.sink.OrderRemoved(OrderRemovedEvent{
			OrderID: makerID,
			Price:   loc.price,
			Qty:     decimal.Zero,
			Side:    r.Side.Opposite(),
		})
	}

	// Step 4: rest the remainder.
	rem := taker.RemainingQty
	switch r.OrderType.Kind {
	case Market, IOC:
		// discard remainder, nothing rests
	case FOK:
		if rem.Sign() != 0 {
			panic("book: FOK left a remainder after passing feasibility")
		}
	case Limit:
		if rem.Sign() > 0 {
			price, _ := r.OrderType.Price()
			if _, exists := b.orderLoc[taker.ID]; exists {
				panic("book: duplicate OrderId on insert")
			}
			b.halfBook(r.Side).addOrder(price, taker)
			b.orderLoc[taker.ID] = orderLocation{side: r.Side, price: price}
			b.sink.OrderAdded(OrderAddedEvent{OrderID: taker.ID, Price: price, Qty: rem, Side: r.Side})
		}
	case SystemLevel:
		price, _ := r.OrderType.Price()
		b.placeOrMergeSystemLevel(taker, price, now)
	}

	return OrderResult{
		OrderID:      taker.ID,
		Side:         taker.Side,
		OrderType:    taker.OrderType,
		InitialQty:   taker.InitialQty,
		RemainingQty: taker.RemainingQty,
		Fills:        taker.Fills,
		Status:       deriveStatus(taker),
	}, executions
}

// placeOrMergeSystemLevel implements the SystemLevel resting rule: if
// an order with this id already rests, merge into it (requires same
// side and type); otherwise insert fresh. This is the only operation
// that mutates an existing resting order's quantity upward.
func (b *OrderBook) placeOrMergeSystemLevel(taker *TradeOrder, price Price, now Timestamp) {
	half := b.halfBook(taker.Side)
	if loc, exists := b.orderLoc[taker.ID]; exists {
		level, ok := half.index.get(loc.price)
		if !ok {
			panic("book: order_loc points at a missing level")
		}
		for _, resting := range level.Orders {
			if resting.ID == taker.ID {
				resting.merge(taker, now)
				return
			}
		}
		panic("book: order_loc points at a missing order")
	}

	half.addOrder(price, taker)
	b.orderLoc[taker.ID] = orderLocation{side: taker.Side, price: price}
	b.sink.OrderAdded(OrderAddedEvent{OrderID: taker.ID, Price: price, Qty: taker.RemainingQty, Side: taker.Side})
}

// eligible implements the per-order-type matching eligibility rule
// against the opposite side's best price.
func eligible(t OrderType, side Side, best Price) bool {
	switch t.Kind {
	case Market:
		return true
	case SystemLevel:
		return false
	default:
		limit, _ := t.Price()
		if side == Bid {
			return best.LessThanOrEqual(limit)
		}
		return best.GreaterThanOrEqual(limit)
	}
}

// deriveStatus derives the final status of an order after matching.
func deriveStatus(t *TradeOrder) OrderStatus {
	if t.RemainingQty.IsZero() {
		return Filled
	}
	if len(t.Fills) == 0 {
		switch t.OrderType.Kind {
		case Market, IOC, FOK:
			return Cancelled
		default:
			return Open
		}
	}
	if t.OrderType.Kind == FOK {
		return Cancelled
	}
	return PartiallyFilled
}

// Cancel fully removes a resting order. Returns (result, false) if the
// id is unknown; never mutates on a miss.
func (b *OrderBook) Cancel(id OrderId) (OrderResult, bool) {
	loc, ok := b.orderLoc[id]
	if !ok {
		return OrderResult{}, false
	}
	order, ok := b.halfBook(loc.side).removeOrder(loc.price, id)
	if !ok {
		// orderLoc and the half-book disagree: an invariant violation.
		panic("book: order_loc out of sync with half-book")
	}
	delete(b.orderLoc, id)
	b.sink.OrderRemoved(OrderRemovedEvent{OrderID: id, Price: loc.price, Qty: order.RemainingQty, Side: loc.side})

	return OrderResult{
		OrderID:      order.ID,
		Side:         order.Side,
		OrderType:    order.OrderType,
		InitialQty:   order.InitialQty,
		RemainingQty: decimal.Zero,
		Fills:        order.Fills,
		Status:       Cancelled,
	}, true
}

// CancelPartial reduces remaining_qty by min(qty, remaining_qty). If
// that reaches zero, it escalates to a full Cancel. Returns (result,
// false) if the id is unknown.
func (b *OrderBook) CancelPartial(id OrderId, qty Quantity) (OrderResult, bool) {
	loc, ok := b.orderLoc[id]
	if !ok {
		return OrderResult{}, false
	}
	level, ok := b.halfBook(loc.side).index.get(loc.price)
	if !ok {
		panic("book: order_loc out of sync with half-book")
	}
	var order *TradeOrder
	for _, o := range level.Orders {
		if o.ID == id {
			order = o
			break
		}
	}
	if order == nil {
		panic("book: order_loc out of sync with price level")
	}

	order.cancelQty(qty, b.now())
	if order.RemainingQty.IsZero() {
		return b.Cancel(id)
	}

	return OrderResult{
		OrderID:      order.ID,
		Side:         order.Side,
		OrderType:    order.OrderType,
		InitialQty:   order.InitialQty,
		RemainingQty: order.RemainingQty,
		Fills:        order.Fills,
		Status:       Open,
	}, true
}

// --- observation queries ---------------------------------------------

func (b *OrderBook) BestBid() (Price, bool) { return b.bids.bestPrice() }
func (b *OrderBook) BestAsk() (Price, bool) { return b.asks.bestPrice() }

func (b *OrderBook) BestPrices() (bid, ask Price, haveBid, haveAsk bool) {
	bid, haveBid = b.BestBid()
	ask, haveAsk = b.BestAsk()
	return
}

// Spread returns ask-bid, defined only when both exist and ask > bid.
func (b *OrderBook) Spread() (Price, bool) {
	bid, haveBid := b.BestBid()
	ask, haveAsk := b.BestAsk()
	if !haveBid || !haveAsk || !ask.GreaterThan(bid) {
		return decimal.Zero, false
	}
	return ask.Sub(bid), true
}

// Depth returns the count of distinct price levels per side: (bids, asks).
func (b *OrderBook) Depth() (int, int) {
	return b.bids.depth(), b.asks.depth()
}

// TotalVolume sums remaining quantity resting on both sides.
func (b *OrderBook) TotalVolume() Quantity {
	total := decimal.Zero
	for _, lvl := range b.bids.levelsBestFirst() {
		total = total.Add(lvl.Qty)
	}
	for _, lvl := range b.asks.levelsBestFirst() {
		total = total.Add(lvl.Qty)
	}
	return total
}

// TotalOrderCount returns the number of resting orders across both sides.
func (b *OrderBook) TotalOrderCount() int {
	return len(b.orderLoc)
}

// VolumeAt returns the aggregated remaining quantity resting on side
// at exactly price.
func (b *OrderBook) VolumeAt(side Side, price Price) Quantity {
	return b.halfBook(side).volumeAt(price)
}

// OrderBookState is a point-in-time snapshot of resting liquidity.
// Asks are listed best-first (ascending price); bids are listed
// best-first (descending price).
type OrderBookState struct {
	Bids []PriceLevelSummary
	Asks []PriceLevelSummary
}

func (b *OrderBook) Snapshot() OrderBookState {
	return OrderBookState{
		Bids: b.bids.levelsBestFirst(),
		Asks: b.asks.levelsBestFirst(),
	}
}
