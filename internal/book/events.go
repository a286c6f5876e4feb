package book

// OrderAddedEvent reports that an order began resting in the book.
type OrderAddedEvent struct {
	OrderID OrderId
	Price   Price
	Qty     Quantity
	Side    Side
}

// OrderRemovedEvent reports that an order left the book, whether by
// full fill or cancellation. Qty is the order's remaining quantity at
// the moment of removal: always zero for a full-fill removal, and
// possibly nonzero for a cancel of an order that still had size left.
type OrderRemovedEvent struct {
	OrderID OrderId
	Price   Price
	Qty     Quantity
	Side    Side
}

// EventSink consumes the observable transitions of an OrderBook. It is
// an external collaborator: the core never blocks on it and never
// inspects the concrete implementation. A book without a sink
// configured drops events on the floor.
type EventSink interface {
	OrderAdded(OrderAddedEvent)
	OrderRemoved(OrderRemovedEvent)
	TradeExecuted(TradeExecution)
}

// NopSink discards every event. Useful in tests and as the sink
// NewOrderBook installs when it is given a nil one.
type NopSink struct{}

func (NopSink) OrderAdded(OrderAddedEvent)     {}
func (NopSink) OrderRemoved(OrderRemovedEvent) {}
func (NopSink) TradeExecuted(TradeExecution)   {}
