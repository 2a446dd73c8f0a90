// Package pricestore holds the per-symbol price series every other
// component reads. Universe selection happens upstream: the store is
// typically fed from the already-filtered, options-enabled price table.
package pricestore

import (
	"fmt"
	"math"
	"sort"

	"github.com/datamilo/StockPriceStats/internal/model"
)

// IntegrityError marks a symbol whose price data violates the series
// invariants. It aborts that symbol's computation only; other symbols
// proceed.
type IntegrityError struct {
	Symbol string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("price data integrity for %s: %s", e.Symbol, e.Reason)
}

// Store groups price points into ordered per-symbol series.
type Store struct {
	series  map[string]*model.PriceSeries
	symbols []string
}

// NewStore groups the given points by symbol, ordered by date as supplied.
// It does not validate; call Validate per symbol so one corrupt symbol
// cannot block the rest.
func NewStore(points []model.PricePoint) *Store {
	s := &Store{series: make(map[string]*model.PriceSeries)}
	for _, p := range points {
		ps, ok := s.series[p.Symbol]
		if !ok {
			ps = &model.PriceSeries{Symbol: p.Symbol}
			s.series[p.Symbol] = ps
			s.symbols = append(s.symbols, p.Symbol)
		}
		ps.Points = append(ps.Points, p)
	}
	sort.Strings(s.symbols)
	return s
}

// Symbols returns all symbols in sorted order.
func (s *Store) Symbols() []string { return s.symbols }

// Series returns the price series for one symbol, or nil if absent.
func (s *Store) Series(symbol string) *model.PriceSeries {
	return s.series[symbol]
}

// Validate checks the series invariants for one symbol: strictly
// increasing dates and finite, positive prices on every required field.
func (s *Store) Validate(symbol string) error {
	ps, ok := s.series[symbol]
	if !ok {
		return &IntegrityError{Symbol: symbol, Reason: "no price data"}
	}
	for i, p := range ps.Points {
		if i > 0 && !p.Date.After(ps.Points[i-1].Date) {
			return &IntegrityError{
				Symbol: symbol,
				Reason: fmt.Sprintf("dates not strictly increasing at %s", p.Date.Format("2006-01-02")),
			}
		}
		for _, v := range []float64{p.Open, p.High, p.Low, p.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return &IntegrityError{
					Symbol: symbol,
					Reason: fmt.Sprintf("invalid price %v on %s", v, p.Date.Format("2006-01-02")),
				}
			}
		}
	}
	return nil
}
