package model

import "time"

// PricePoint represents a single daily price observation for one symbol.
type PricePoint struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
}

// PriceSeries holds the ordered daily history for one symbol.
// Dates are strictly increasing with no duplicates; points are only
// ever appended with later dates.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Len returns the number of observations in the series.
func (s *PriceSeries) Len() int { return len(s.Points) }

// LastDate returns the date of the final observation, or the zero time
// for an empty series.
func (s *PriceSeries) LastDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// Lows returns the low price of every observation in order.
func (s *PriceSeries) Lows() []float64 {
	lows := make([]float64, len(s.Points))
	for i, p := range s.Points {
		lows[i] = p.Low
	}
	return lows
}
