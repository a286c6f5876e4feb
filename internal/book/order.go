package book

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderTypeKind discriminates the five supported order types.
type OrderTypeKind int

const (
	Market OrderTypeKind = iota
	Limit
	IOC
	FOK
	SystemLevel
)

func (k OrderTypeKind) String() string {
	switch k {
	case Market:
		return "Market"
	case Limit:
		return "Limit"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	case SystemLevel:
		return "SystemLevel"
	default:
		return "Unknown"
	}
}

// OrderType carries the discriminant plus the price, when the variant
// has one. Market orders carry no price.
type OrderType struct {
	Kind  OrderTypeKind
	price Price
}

func NewMarket() OrderType                 { return OrderType{Kind: Market} }
func NewLimit(price Price) OrderType       { return OrderType{Kind: Limit, price: price} }
func NewIOC(price Price) OrderType         { return OrderType{Kind: IOC, price: price} }
func NewFOK(price Price) OrderType         { return OrderType{Kind: FOK, price: price} }
func NewSystemLevel(price Price) OrderType { return OrderType{Kind: SystemLevel, price: price} }

// Price returns the order type's limit price and whether it has one.
func (t OrderType) Price() (Price, bool) {
	if t.Kind == Market {
		return decimal.Zero, false
	}
	return t.price, true
}

func (t OrderType) String() string { return t.Kind.String() }

// OrderStatus is the caller-facing lifecycle state of an OrderResult.
type OrderStatus int

const (
	Open OrderStatus = iota
	PartiallyFilled
	Filled
	Cancelled
)

func (s OrderStatus) String() string {
	switch s {
	case Open:
		return "Open"
	case PartiallyFilled:
		return "PartiallyFilled"
	case Filled:
		return "Filled"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Fill records one partial or full execution against a resting order.
type Fill struct {
	Qty              Quantity
	Price            Price
	Timestamp        Timestamp
	CounterpartyID   OrderId
}

// OrderRequest is the immutable input to OrderBook.Place.
type OrderRequest struct {
	ID        OrderId
	Side      Side
	Qty       Quantity
	OrderType OrderType
}

// NewOrderRequest validates and constructs a request, assigning an id
// from the order type's generator (time-ordered for ordinary orders,
// deterministic for SystemLevel).
func NewOrderRequest(side Side, qty Quantity, orderType OrderType) (OrderRequest, error) {
	if qty.Sign() <= 0 {
		return OrderRequest{}, ErrNegativeQuantity
	}
	if orderType.Kind != Market {
		if orderType.price.Sign() <= 0 {
			return OrderRequest{}, ErrNegativePrice
		}
	}

	var id OrderId
	if orderType.Kind == SystemLevel {
		id = SystemLevelID([]byte(side.String() + ":" + normalizePrice(orderType.price)))
	} else {
		id = NewOrderID()
	}

	return OrderRequest{ID: id, Side: side, Qty: qty, OrderType: orderType}, nil
}

// TradeOrder is the resting form of an order once it has entered the
// book (even transiently, as the taker during matching).
type TradeOrder struct {
	ID               OrderId
	Side             Side
	RemainingQty     Quantity
	InitialQty       Quantity
	Fills            []Fill
	OrderType        OrderType
	CreatedAt        Timestamp
	LastModifiedAt   Timestamp
}

// newTradeOrder materializes the taker from an incoming request.
func newTradeOrder(r OrderRequest, now Timestamp) *TradeOrder {
	return &TradeOrder{
		ID:             r.ID,
		Side:           r.Side,
		RemainingQty:   r.Qty,
		InitialQty:     r.Qty,
		OrderType:      r.OrderType,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
}

// fillAgainst records a mutual fill between this order (as maker) and
// the taker, at the given trade price. Both orders' remaining_qty are
// decremented by the matched quantity; matchQty is returned.
func (o *TradeOrder) fillAgainst(taker *TradeOrder, price Price, now Timestamp) Quantity {
	matchQty := decimal.Min(o.RemainingQty, taker.RemainingQty)
	o.RemainingQty = o.RemainingQty.Sub(matchQty)
	taker.RemainingQty = taker.RemainingQty.Sub(matchQty)

	o.Fills = append(o.Fills, Fill{Qty: matchQty, Price: price, Timestamp: now, CounterpartyID: taker.ID})
	taker.Fills = append(taker.Fills, Fill{Qty: matchQty, Price: price, Timestamp: now, CounterpartyID: o.ID})

	o.LastModifiedAt = now
	taker.LastModifiedAt = now
	return matchQty
}

// cancelQty reduces remaining_qty by at most min(qty, remaining_qty).
func (o *TradeOrder) cancelQty(qty Quantity, now Timestamp) {
	reduce := decimal.Min(qty, o.RemainingQty)
	o.RemainingQty = o.RemainingQty.Sub(reduce)
	o.LastModifiedAt = now
}

// mergeable reports whether other can be folded into o by SystemLevel
// aggregation: same side and same order type.
func (o *TradeOrder) mergeable(other *TradeOrder) bool {
	return o.Side == other.Side && o.OrderType.Kind == other.OrderType.Kind
}

// merge folds other's quantity and fills into o. Panics if the orders
// are not mergeable: a mismatched merge is a programmer error, not a
// runtime condition.
func (o *TradeOrder) merge(other *TradeOrder, now Timestamp) {
	if !o.mergeable(other) {
		panic(fmt.Sprintf("book: cannot merge order %s (%s/%s) into %s (%s/%s)",
			other.ID, other.Side, other.OrderType, o.ID, o.Side, o.OrderType))
	}
	o.RemainingQty = o.RemainingQty.Add(other.RemainingQty)
	o.InitialQty = o.InitialQty.Add(other.InitialQty)
	o.Fills = append(o.Fills, other.Fills...)
	o.LastModifiedAt = now
}

func (o *TradeOrder) filledQty() Quantity {
	return o.InitialQty.Sub(o.RemainingQty)
}

// OrderResult summarizes the outcome of a single Place/Cancel call.
type OrderResult struct {
	OrderID      OrderId
	Side         Side
	OrderType    OrderType
	InitialQty   Quantity
	RemainingQty Quantity
	Fills        []Fill
	Status       OrderStatus
}

func (r OrderResult) String() string {
	return fmt.Sprintf("OrderResult{id=%s side=%s type=%s status=%s remaining=%s fills=%d}",
		r.OrderID, r.Side, r.OrderType, r.Status, r.RemainingQty, len(r.Fills))
}
