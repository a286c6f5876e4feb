// Package registry multiplexes order books across trading pairs,
// keyed by a base/quote pair and backed by book.OrderBook.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"fenrir/internal/book"
)

// TradingPair names one market as base/quote, e.g. BTC/USD.
type TradingPair struct {
	Base  string
	Quote string
}

func NewTradingPair(base, quote string) TradingPair {
	return TradingPair{Base: base, Quote: quote}
}

func (p TradingPair) String() string {
	return fmt.Sprintf("%s_%s", p.Base, p.Quote)
}

var (
	ErrMarketExists   = errors.New("registry: market already exists")
	ErrMarketNotFound = errors.New("registry: market not found")
)

// Registry owns one *book.OrderBook per TradingPair. It does not lock
// across books: each book is single-owner and safe for one caller at a
// time, per book.OrderBook's own contract. The registry's own map is
// guarded separately so adding/removing markets is safe concurrent with
// lookups of other markets.
type Registry struct {
	mu     sync.RWMutex
	books  map[TradingPair]*book.OrderBook
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{books: make(map[TradingPair]*book.OrderBook)}
}

// AddMarket creates a fresh, empty book for pair. sink may be nil, in
// which case events are dropped (book.NewOrderBook's default).
func (r *Registry) AddMarket(pair TradingPair, sink book.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.books[pair]; exists {
		return fmt.Errorf("%w: %s", ErrMarketExists, pair)
	}
	r.books[pair] = book.NewOrderBook(sink)
	return nil
}

// RemoveMarket deletes a market's book entirely, losing any resting
// orders. Callers that need to drain a market first should cancel
// every resting order before calling this.
func (r *Registry) RemoveMarket(pair TradingPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.books[pair]; !exists {
		return fmt.Errorf("%w: %s", ErrMarketNotFound, pair)
	}
	delete(r.books, pair)
	return nil
}

// Markets lists every pair currently registered, in no particular order.
func (r *Registry) Markets() []TradingPair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TradingPair, 0, len(r.books))
	for pair := range r.books {
		out = append(out, pair)
	}
	return out
}

// Exists reports whether pair has a book.
func (r *Registry) Exists(pair TradingPair) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.books[pair]
	return ok
}

func (r *Registry) lookup(pair TradingPair) (*book.OrderBook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, pair)
	}
	return b, nil
}

// Place forwards to pair's book. Returns ErrMarketNotFound if pair is
// unregistered.
func (r *Registry) Place(pair TradingPair, req book.OrderRequest) (book.OrderResult, []book.TradeExecution, error) {
	b, err := r.lookup(pair)
	if err != nil {
		return book.OrderResult{}, nil, err
	}
	res, trades := b.Place(req)
	return res, trades, nil
}

func (r *Registry) Cancel(pair TradingPair, id book.OrderId) (book.OrderResult, bool, error) {
	b, err := r.lookup(pair)
	if err != nil {
		return book.OrderResult{}, false, err
	}
	res, ok := b.Cancel(id)
	return res, ok, nil
}

func (r *Registry) CancelPartial(pair TradingPair, id book.OrderId, qty book.Quantity) (book.OrderResult, bool, error) {
	b, err := r.lookup(pair)
	if err != nil {
		return book.OrderResult{}, false, err
	}
	res, ok := b.CancelPartial(id, qty)
	return res, ok, nil
}

func (r *Registry) Snapshot(pair TradingPair) (book.OrderBookState, error) {
	b, err := r.lookup(pair)
	if err != nil {
		return book.OrderBookState{}, err
	}
	return b.Snapshot(), nil
}

func (r *Registry) BestPrices(pair TradingPair) (bid, ask book.Price, haveBid, haveAsk bool, err error) {
	b, lookupErr := r.lookup(pair)
	if lookupErr != nil {
		return bid, ask, false, false, lookupErr
	}
	bid, ask, haveBid, haveAsk = b.BestPrices()
	return
}

func (r *Registry) Spread(pair TradingPair) (book.Price, bool, error) {
	b, err := r.lookup(pair)
	if err != nil {
		return book.Price{}, false, err
	}
	spread, ok := b.Spread()
	return spread, ok, nil
}

func (r *Registry) Depth(pair TradingPair) (bids, asks int, err error) {
	b, lookupErr := r.lookup(pair)
	if lookupErr != nil {
		return 0, 0, lookupErr
	}
	bids, asks = b.Depth()
	return
}

func (r *Registry) VolumeAt(pair TradingPair, side book.Side, price book.Price) (book.Quantity, error) {
	b, err := r.lookup(pair)
	if err != nil {
		return book.Quantity{}, err
	}
	return b.VolumeAt(side, price), nil
}
