package net

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fenrir/internal/book"
	"fenrir/internal/registry"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
	ErrInvalidUUID        = errors.New("invalid uuid")
	ErrInvalidOrderType   = errors.New("invalid order type")
	ErrInvalidDecimal     = errors.New("invalid decimal payload")
	ErrInvalidSide        = errors.New("invalid side")
)

// parseSide validates a decoded Side is one of the two known values.
// book.Side.String/Opposite treat anything but Bid as Ask, so a
// malformed wire value must be rejected here rather than silently
// folded into Ask.
func parseSide(v uint16) (book.Side, error) {
	switch book.Side(v) {
	case book.Bid, book.Ask:
		return book.Side(v), nil
	default:
		return 0, ErrInvalidSide
	}
}

type MessageType int

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
)

type ReportMessageType int

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

type Message interface {
	GetType() MessageType
}

// BaseMessageHeaderLen is the 2-byte type discriminant every message
// starts with.
const BaseMessageHeaderLen = 2

type BaseMessage struct {
	TypeOf MessageType // 2 bytes
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, ErrMessageTooShort
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

// readLenPrefixed reads a uint16-length-prefixed byte string, returning
// it plus the remaining buffer.
func readLenPrefixed(buf []byte) (string, []byte, error) {
	if len(buf) < 2 {
		return "", nil, ErrMessageTooShort
	}
	n := int(binary.BigEndian.Uint16(buf[0:2]))
	buf = buf[2:]
	if len(buf) < n {
		return "", nil, ErrMessageTooShort
	}
	return string(buf[:n]), buf[n:], nil
}

func putLenPrefixed(s string) []byte {
	out := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(s)))
	copy(out[2:], s)
	return out
}

// readDecimal reads a length-prefixed decimal string; an empty string
// decodes to the zero value (used for "no price" / "no partial qty").
func readDecimal(buf []byte) (decimal.Decimal, []byte, error) {
	s, rest, err := readLenPrefixed(buf)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	if s == "" {
		return decimal.Decimal{}, rest, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, nil, fmt.Errorf("%w: %s", ErrInvalidDecimal, s)
	}
	return v, rest, nil
}

// wireOrderType mirrors book.OrderTypeKind on the wire as its own type,
// so the wire encoding doesn't shift if book.OrderTypeKind's iota order
// ever changes.
type wireOrderType uint8

const (
	wireMarket wireOrderType = iota
	wireLimit
	wireIOC
	wireFOK
	wireSystemLevel
)

func toWireOrderType(k book.OrderTypeKind) wireOrderType {
	switch k {
	case book.Market:
		return wireMarket
	case book.Limit:
		return wireLimit
	case book.IOC:
		return wireIOC
	case book.FOK:
		return wireFOK
	case book.SystemLevel:
		return wireSystemLevel
	default:
		panic("net: unknown order type kind")
	}
}

func buildOrderType(kind wireOrderType, price decimal.Decimal) (book.OrderType, error) {
	switch kind {
	case wireMarket:
		return book.NewMarket(), nil
	case wireLimit:
		return book.NewLimit(price), nil
	case wireIOC:
		return book.NewIOC(price), nil
	case wireFOK:
		return book.NewFOK(price), nil
	case wireSystemLevel:
		return book.NewSystemLevel(price), nil
	default:
		return book.OrderType{}, ErrInvalidOrderType
	}
}

// NewOrderMessage requests a fresh order on a pair. Wire layout after
// the 2-byte BaseMessage header: 2-byte Side, 1-byte wireOrderType,
// len-prefixed Base, len-prefixed Quote, len-prefixed Qty decimal
// string, len-prefixed Price decimal string (empty for Market),
// len-prefixed Username.
type NewOrderMessage struct {
	BaseMessage
	Pair      registry.TradingPair
	Side      book.Side
	OrderType book.OrderType
	Qty       decimal.Decimal
	Username  string
}

// Request builds the book-level order request, assigning its id.
func (o *NewOrderMessage) Request() (book.OrderRequest, error) {
	return book.NewOrderRequest(o.Side, o.Qty, o.OrderType)
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	if len(msg) < 3 {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	side, err := parseSide(binary.BigEndian.Uint16(msg[0:2]))
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.Side = side
	kind := wireOrderType(msg[2])
	rest := msg[3:]

	base, rest, err := readLenPrefixed(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}
	quote, rest, err := readLenPrefixed(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.Pair = registry.NewTradingPair(base, quote)

	qty, rest, err := readDecimal(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.Qty = qty

	price, rest, err := readDecimal(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.OrderType, err = buildOrderType(kind, price)
	if err != nil {
		return NewOrderMessage{}, err
	}

	username, _, err := readLenPrefixed(rest)
	if err != nil {
		return NewOrderMessage{}, err
	}
	m.Username = username

	return m, nil
}

func (m NewOrderMessage) Serialize() []byte {
	price, hasPrice := m.OrderType.Price()
	header := make([]byte, 5)
	binary.BigEndian.PutUint16(header[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint16(header[2:4], uint16(m.Side))
	header[4] = byte(toWireOrderType(m.OrderType.Kind))

	buf := append([]byte{}, header...)
	buf = append(buf, putLenPrefixed(m.Pair.Base)...)
	buf = append(buf, putLenPrefixed(m.Pair.Quote)...)
	buf = append(buf, putLenPrefixed(m.Qty.String())...)
	if hasPrice {
		buf = append(buf, putLenPrefixed(price.String())...)
	} else {
		buf = append(buf, putLenPrefixed("")...)
	}
	buf = append(buf, putLenPrefixed(m.Username)...)
	return buf
}

// CancelOrderMessage requests cancellation of an existing order, full
// or partial. Wire layout after the header: len-prefixed Base, len-
// prefixed Quote, 16 raw bytes of OrderUUID, len-prefixed PartialQty
// decimal string (empty string = full cancel).
type CancelOrderMessage struct {
	BaseMessage
	Pair       registry.TradingPair
	OrderUUID  uuid.UUID
	Partial    bool
	PartialQty decimal.Decimal
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}

	base, rest, err := readLenPrefixed(msg)
	if err != nil {
		return CancelOrderMessage{}, err
	}
	quote, rest, err := readLenPrefixed(rest)
	if err != nil {
		return CancelOrderMessage{}, err
	}
	m.Pair = registry.NewTradingPair(base, quote)

	if len(rest) < 16 {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	id, err := uuid.FromBytes(rest[:16])
	if err != nil {
		return CancelOrderMessage{}, fmt.Errorf("%w: %w", ErrInvalidUUID, err)
	}
	m.OrderUUID = id
	rest = rest[16:]

	qty, _, err := readDecimal(rest)
	if err != nil {
		return CancelOrderMessage{}, err
	}
	if !qty.IsZero() {
		m.Partial = true
		m.PartialQty = qty
	}

	return m, nil
}

func (m CancelOrderMessage) Serialize() []byte {
	header := make([]byte, 2)
	binary.BigEndian.PutUint16(header, uint16(CancelOrder))

	buf := append([]byte{}, header...)
	buf = append(buf, putLenPrefixed(m.Pair.Base)...)
	buf = append(buf, putLenPrefixed(m.Pair.Quote)...)
	idBytes, _ := m.OrderUUID.MarshalBinary()
	buf = append(buf, idBytes...)
	if m.Partial {
		buf = append(buf, putLenPrefixed(m.PartialQty.String())...)
	} else {
		buf = append(buf, putLenPrefixed("")...)
	}
	return buf
}

// Report carries the outcome of a submission back to a client: one per
// trade leg for an execution, or a single error report.
type Report struct {
	MessageType  ReportMessageType
	Pair         registry.TradingPair
	Side         book.Side
	Timestamp    int64
	Qty          decimal.Decimal
	Price        decimal.Decimal
	OrderID      uuid.UUID
	Counterparty uuid.UUID
	Err          string
}

func (r Report) Serialize() []byte {
	header := make([]byte, 1+2+8)
	header[0] = byte(r.MessageType)
	binary.BigEndian.PutUint16(header[1:3], uint16(r.Side))
	binary.BigEndian.PutUint64(header[3:11], uint64(r.Timestamp))

	buf := append([]byte{}, header...)
	buf = append(buf, putLenPrefixed(r.Pair.Base)...)
	buf = append(buf, putLenPrefixed(r.Pair.Quote)...)
	buf = append(buf, putLenPrefixed(r.Qty.String())...)
	buf = append(buf, putLenPrefixed(r.Price.String())...)
	orderIDBytes, _ := r.OrderID.MarshalBinary()
	counterpartyBytes, _ := r.Counterparty.MarshalBinary()
	buf = append(buf, orderIDBytes...)
	buf = append(buf, counterpartyBytes...)
	buf = append(buf, putLenPrefixed(r.Err)...)
	return buf
}

// ParseReport decodes a Report written by Report.Serialize. It is
// exported for clients like cmd/fenrirctl that need to read reports
// back off the wire.
func ParseReport(buf []byte) (Report, error) {
	if len(buf) < 11 {
		return Report{}, ErrMessageTooShort
	}
	side, err := parseSide(binary.BigEndian.Uint16(buf[1:3]))
	if err != nil {
		return Report{}, err
	}
	r := Report{
		MessageType: ReportMessageType(buf[0]),
		Side:        side,
		Timestamp:   int64(binary.BigEndian.Uint64(buf[3:11])),
	}
	rest := buf[11:]

	base, rest, err := readLenPrefixed(rest)
	if err != nil {
		return Report{}, err
	}
	quote, rest, err := readLenPrefixed(rest)
	if err != nil {
		return Report{}, err
	}
	r.Pair = registry.NewTradingPair(base, quote)

	qty, rest, err := readDecimal(rest)
	if err != nil {
		return Report{}, err
	}
	r.Qty = qty

	price, rest, err := readDecimal(rest)
	if err != nil {
		return Report{}, err
	}
	r.Price = price

	if len(rest) < 32 {
		return Report{}, ErrMessageTooShort
	}
	orderID, err := uuid.FromBytes(rest[:16])
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidUUID, err)
	}
	counterparty, err := uuid.FromBytes(rest[16:32])
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidUUID, err)
	}
	r.OrderID = orderID
	r.Counterparty = counterparty
	rest = rest[32:]

	errStr, _, err := readLenPrefixed(rest)
	if err != nil {
		return Report{}, err
	}
	r.Err = errStr

	return r, nil
}

func executionReport(pair registry.TradingPair, t book.TradeExecution, side book.Side, orderID, counterparty uuid.UUID) Report {
	return Report{
		MessageType:  ExecutionReport,
		Pair:         pair,
		Side:         side,
		Timestamp:    t.Timestamp.Unix(),
		Qty:          t.Qty,
		Price:        t.Price,
		OrderID:      orderID,
		Counterparty: counterparty,
	}
}

func errorReport(pair registry.TradingPair, err error) Report {
	return Report{
		MessageType: ErrorReport,
		Pair:        pair,
		Err:         err.Error(),
	}
}
