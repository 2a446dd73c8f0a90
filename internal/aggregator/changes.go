package aggregator

import (
	"github.com/datamilo/StockPriceStats/internal/calculator"
	"github.com/datamilo/StockPriceStats/internal/model"
)

// ChangeStats reports how often a symbol's rolling low moved: the number
// of distinct-level boundaries versus the days the rolling low existed.
type ChangeStats struct {
	Symbol      string
	WindowDays  int
	TradingDays int // days with a defined rolling low
	Changes     int // days the level differed from the previous day's
	ChangeRate  float64
}

// SupportChangeStats measures rolling-low change frequency for one symbol
// and window length, using the change-triggered event mode. The first
// defined level counts as a change (there is no previous level to match).
func SupportChangeStats(series *model.PriceSeries, windowDays int) (ChangeStats, error) {
	stats := ChangeStats{Symbol: series.Symbol, WindowDays: windowDays}

	all, err := calculator.SupportEvents(series, windowDays, calculator.Exhaustive)
	if err != nil {
		return stats, err
	}
	changes, err := calculator.SupportEvents(series, windowDays, calculator.ChangeTriggered)
	if err != nil {
		return stats, err
	}

	stats.TradingDays = len(all)
	stats.Changes = len(changes)
	if stats.TradingDays > 0 {
		stats.ChangeRate = float64(stats.Changes) / float64(stats.TradingDays)
	}
	return stats, nil
}
