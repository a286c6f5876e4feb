package net

import (
	"encoding/binary"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/book"
	"fenrir/internal/registry"
)

func TestNewOrderMessageRoundTrips(t *testing.T) {
	m := NewOrderMessage{
		BaseMessage: BaseMessage{TypeOf: NewOrder},
		Pair:        registry.NewTradingPair("BTC", "USD"),
		Side:        book.Ask,
		OrderType:   book.NewLimit(decimal.RequireFromString("100.50")),
		Qty:         decimal.RequireFromString("2.5"),
		Username:    "alice",
	}

	buf := m.Serialize()
	parsed, err := parseMessage(buf)
	require.NoError(t, err)

	got, ok := parsed.(NewOrderMessage)
	require.True(t, ok)
	assert.Equal(t, m.Side, got.Side)
	assert.Equal(t, m.Pair, got.Pair)
	assert.True(t, m.Qty.Equal(got.Qty))
	assert.Equal(t, m.Username, got.Username)
	price, hasPrice := got.OrderType.Price()
	require.True(t, hasPrice)
	assert.True(t, decimal.RequireFromString("100.50").Equal(price))
}

func TestParseNewOrderRejectsUnknownSide(t *testing.T) {
	m := NewOrderMessage{
		BaseMessage: BaseMessage{TypeOf: NewOrder},
		Pair:        registry.NewTradingPair("BTC", "USD"),
		Side:        book.Bid,
		OrderType:   book.NewMarket(),
		Qty:         decimal.RequireFromString("1"),
		Username:    "alice",
	}
	buf := m.Serialize()
	// Side lives right after the 2-byte message-type header.
	binary.BigEndian.PutUint16(buf[2:4], 7)

	_, err := parseMessage(buf)
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestParseReportRejectsUnknownSide(t *testing.T) {
	r := Report{
		MessageType: ExecutionReport,
		Pair:        registry.NewTradingPair("BTC", "USD"),
		Side:        book.Bid,
		Timestamp:   1,
		Qty:         decimal.RequireFromString("1"),
		Price:       decimal.RequireFromString("100"),
	}
	buf := r.Serialize()
	binary.BigEndian.PutUint16(buf[1:3], 9)

	_, err := ParseReport(buf)
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestCancelOrderMessageRoundTrips(t *testing.T) {
	m := CancelOrderMessage{
		BaseMessage: BaseMessage{TypeOf: CancelOrder},
		Pair:        registry.NewTradingPair("ETH", "USD"),
		OrderUUID:   book.NewOrderID(),
		Partial:     true,
		PartialQty:  decimal.RequireFromString("3"),
	}

	buf := m.Serialize()

	parsed, err := parseMessage(buf)
	require.NoError(t, err)

	got, ok := parsed.(CancelOrderMessage)
	require.True(t, ok)
	assert.Equal(t, m.Pair, got.Pair)
	assert.Equal(t, m.OrderUUID, got.OrderUUID)
	assert.True(t, got.Partial)
	assert.True(t, m.PartialQty.Equal(got.PartialQty))
}
