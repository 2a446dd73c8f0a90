package calculator

import (
	"fmt"
	"math"

	"github.com/datamilo/StockPriceStats/internal/model"
)

// Mode selects how support events are generated from the rolling lows.
type Mode int

const (
	// Exhaustive emits one event per trading day once enough history
	// exists: every day's rolling low is a support candidate.
	Exhaustive Mode = iota
	// ChangeTriggered emits an event only on days where the rolling low
	// differs from the previous day's, marking new-low boundaries.
	ChangeTriggered
)

// SupportEvents generates support events for one symbol and window length.
// Days with fewer than windowDays trailing observations produce no event.
// Output is deterministic: identical price input yields identical events.
func SupportEvents(series *model.PriceSeries, windowDays int, mode Mode) ([]model.SupportEvent, error) {
	lows, err := RollingMin(series.Lows(), windowDays)
	if err != nil {
		return nil, fmt.Errorf("rolling min for %s: %w", series.Symbol, err)
	}

	var events []model.SupportEvent
	prev := math.NaN()
	for i, level := range lows {
		if math.IsNaN(level) {
			continue
		}
		if mode == ChangeTriggered && level == prev {
			continue
		}
		events = append(events, model.SupportEvent{
			Symbol:     series.Symbol,
			WindowDays: windowDays,
			Date:       series.Points[i].Date,
			Level:      level,
			Index:      i,
		})
		prev = level
	}
	return events, nil
}
