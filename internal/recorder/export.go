package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/datamilo/StockPriceStats/internal/aggregator"
	"github.com/datamilo/StockPriceStats/internal/model"
)

// ExportResults writes the detailed outcome rows for one window length to
// <dir>/<prefix>_detailed_results.csv. The file is written to a temp path
// and atomically renamed into place, so concurrent readers only ever see
// a complete file.
func ExportResults(rs *model.ResultSet, spec model.WindowSpec, dir string) (string, error) {
	path := filepath.Join(dir, spec.FilePrefix()+"_detailed_results.csv")

	header := []string{"symbol", "window_days", "support_date", "support_level",
		"wait_days", "test_date", "expiry_days", "expiry_date", "success",
		"min_during_option", "days_to_break", "break_pct"}

	records := make([][]string, 0, rs.Len()+1)
	records = append(records, header)
	for _, r := range rs.Rows() {
		daysToBreak, breakPct := "", ""
		if r.DaysToBreak != nil {
			daysToBreak = strconv.Itoa(*r.DaysToBreak)
		}
		if r.BreakPct != nil {
			breakPct = strconv.FormatFloat(*r.BreakPct, 'f', -1, 64)
		}
		records = append(records, []string{
			r.Symbol,
			strconv.Itoa(r.WindowDays),
			r.SupportDate.Format(dateLayout),
			strconv.FormatFloat(r.SupportLevel, 'f', -1, 64),
			strconv.Itoa(r.WaitDays),
			r.TestDate.Format(dateLayout),
			strconv.Itoa(r.ExpiryDays),
			r.ExpiryDate.Format(dateLayout),
			strconv.FormatBool(r.Success),
			strconv.FormatFloat(r.MinDuringOption, 'f', -1, 64),
			daysToBreak,
			breakPct,
		})
	}

	if err := writeAtomic(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// ExportMatrix writes the success matrix for one window length to
// <dir>/<prefix>_matrix.csv, one row per wait time with rate and sample
// columns per expiry, mirroring the detailed-results naming scheme.
func ExportMatrix(m *aggregator.Matrix, spec model.WindowSpec, dir string) (string, error) {
	path := filepath.Join(dir, spec.FilePrefix()+"_matrix.csv")

	header := []string{"wait_days"}
	for _, e := range m.Expiries {
		header = append(header,
			fmt.Sprintf("expiry_%dd_rate", e),
			fmt.Sprintf("expiry_%dd_count", e))
	}

	records := [][]string{header}
	for _, wait := range m.WaitTimes {
		rec := []string{strconv.Itoa(wait)}
		for _, e := range m.Expiries {
			cell, ok := m.Cell(wait, e)
			if !ok {
				rec = append(rec, "", "0")
				continue
			}
			rec = append(rec,
				strconv.FormatFloat(cell.SuccessRate, 'f', 4, 64),
				strconv.Itoa(cell.SampleCount))
		}
		records = append(records, rec)
	}

	if err := writeAtomic(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// ExportRollups writes per-symbol outcome summaries to
// <dir>/<prefix>_symbol_rollups.csv.
func ExportRollups(rollups []aggregator.SymbolRollup, spec model.WindowSpec, dir string) (string, error) {
	path := filepath.Join(dir, spec.FilePrefix()+"_symbol_rollups.csv")

	records := [][]string{{"symbol", "samples", "breaks", "success_rate",
		"mean_days_to_break", "mean_break_pct"}}
	for _, r := range rollups {
		records = append(records, []string{
			r.Symbol,
			strconv.Itoa(r.SampleCount),
			strconv.Itoa(r.Breaks),
			strconv.FormatFloat(r.SuccessRate, 'f', 4, 64),
			strconv.FormatFloat(r.MeanDaysToBreak, 'f', 2, 64),
			strconv.FormatFloat(r.MeanBreakPct, 'f', 4, 64),
		})
	}

	if err := writeAtomic(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// ExportChangeStats writes per-symbol rolling-low change frequencies to
// <dir>/<prefix>_support_changes.csv.
func ExportChangeStats(stats []aggregator.ChangeStats, spec model.WindowSpec, dir string) (string, error) {
	path := filepath.Join(dir, spec.FilePrefix()+"_support_changes.csv")

	records := [][]string{{"symbol", "window_days", "trading_days", "changes", "change_rate"}}
	for _, s := range stats {
		records = append(records, []string{
			s.Symbol,
			strconv.Itoa(s.WindowDays),
			strconv.Itoa(s.TradingDays),
			strconv.Itoa(s.Changes),
			strconv.FormatFloat(s.ChangeRate, 'f', 4, 64),
		})
	}

	if err := writeAtomic(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes CSV records to path via a temp file and rename.
func writeAtomic(path string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export into place: %w", err)
	}
	return nil
}
