package pricestore

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/datamilo/StockPriceStats/internal/model"
)

const dateLayout = "2006-01-02"

// priceColumns is the required header of a price table file.
var priceColumns = []string{"symbol", "date", "open", "high", "low", "close"}

// LoadCSV reads a price table (symbol,date,open,high,low,close) from disk.
// Rows are returned in file order; grouping and per-symbol validation
// happen in NewStore / Validate.
func LoadCSV(path string) ([]model.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read price header: %w", err)
	}
	if len(header) < len(priceColumns) {
		return nil, fmt.Errorf("price file %s: expected columns %v, got %v", path, priceColumns, header)
	}

	var points []model.PricePoint
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price row: %w", err)
		}
		line++

		date, err := time.Parse(dateLayout, rec[1])
		if err != nil {
			return nil, fmt.Errorf("price file %s line %d: bad date %q: %w", path, line, rec[1], err)
		}
		open, err := parsePrice(rec[2])
		if err != nil {
			return nil, fmt.Errorf("price file %s line %d: open: %w", path, line, err)
		}
		high, err := parsePrice(rec[3])
		if err != nil {
			return nil, fmt.Errorf("price file %s line %d: high: %w", path, line, err)
		}
		low, err := parsePrice(rec[4])
		if err != nil {
			return nil, fmt.Errorf("price file %s line %d: low: %w", path, line, err)
		}
		closep, err := parsePrice(rec[5])
		if err != nil {
			return nil, fmt.Errorf("price file %s line %d: close: %w", path, line, err)
		}

		points = append(points, model.PricePoint{
			Symbol: rec[0],
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closep,
		})
	}
	return points, nil
}

func parsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", s, err)
	}
	return v, nil
}
