package book

import "fmt"

// TradeExecution records one match between a taker and a resting maker.
type TradeExecution struct {
	Qty       Quantity
	Price     Price
	TakerID   OrderId
	MakerID   OrderId
	TakerSide Side
	Timestamp Timestamp
}

func (t TradeExecution) String() string {
	return fmt.Sprintf("Trade{qty=%s price=%s taker=%s maker=%s takerSide=%s}",
		t.Qty, t.Price, t.TakerID, t.MakerID, t.TakerSide)
}
