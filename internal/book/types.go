// Package book implements a single-instrument limit order book: two
// price-time-priority half-books, the five supported order types, and
// the event stream that results from matching.
package book

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price and Quantity are exact fixed-point decimals. Floats are never
// used on the hot path: price*quantity must not lose precision.
type Price = decimal.Decimal
type Quantity = decimal.Decimal

// Timestamp marks when an order was created or last touched.
type Timestamp = time.Time

// OrderId is a 128-bit opaque identifier, unique per logical order.
type OrderId = uuid.UUID

// systemLevelNamespace is the fixed namespace SystemLevel ids are
// derived against, mirroring the original Rust implementation's
// Uuid::new_v5(&Uuid::NAMESPACE_DNS, ...).
var systemLevelNamespace = uuid.NameSpaceDNS

// NewOrderID returns a time-ordered unique id for a user order.
func NewOrderID() OrderId {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the system clock/entropy source is
		// broken beyond repair; there is nothing sensible to return.
		panic(err)
	}
	return id
}

// SystemLevelID derives a deterministic id from a byte seed
// (NewOrderRequest uses the side name and the normalized price) so
// repeated SystemLevel submissions at the same level collide onto the
// same resting order.
func SystemLevelID(seed []byte) OrderId {
	return uuid.NewSHA1(systemLevelNamespace, seed)
}

// Side is one of Bid or Ask.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// ErrNegativeQuantity and ErrNegativePrice flag invalid inputs at
// construction time; they are validation errors, not invariant panics.
var (
	ErrNegativeQuantity = errors.New("book: negative or zero quantity")
	ErrNegativePrice    = errors.New("book: negative or zero price")
)

// priceScale fixes the normalized decimal places used as map keys in
// priceLevelIndex so that mathematically equal prices with differing
// internal scale (e.g. "100" vs "100.00") collide on the same key.
const priceScale = 18

func normalizePrice(p Price) string {
	return p.Truncate(priceScale).String()
}
