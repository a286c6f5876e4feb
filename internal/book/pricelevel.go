package book

import "github.com/shopspring/decimal"

// PriceLevel is a FIFO queue of resting orders at one price on one
// side. All orders in a level share the level's Price and Side.
type PriceLevel struct {
	Price  Price
	Side   Side
	Orders []*TradeOrder
}

func newPriceLevel(price Price, side Side) *PriceLevel {
	return &PriceLevel{Price: price, Side: side}
}

func (pl *PriceLevel) pushBack(o *TradeOrder) {
	pl.Orders = append(pl.Orders, o)
}

// removeByID scans the level for id, removes it preserving order, and
// returns it. Returns (nil, false) if absent.
func (pl *PriceLevel) removeByID(id OrderId) (*TradeOrder, bool) {
	for i, o := range pl.Orders {
		if o.ID == id {
			pl.Orders = append(pl.Orders[:i:i], pl.Orders[i+1:]...)
			return o, true
		}
	}
	return nil, false
}

func (pl *PriceLevel) isEmpty() bool {
	return len(pl.Orders) == 0
}

// totalQuantity sums remaining_qty across every order in the level.
func (pl *PriceLevel) totalQuantity() Quantity {
	total := decimal.Zero
	for _, o := range pl.Orders {
		total = total.Add(o.RemainingQty)
	}
	return total
}
