package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/datamilo/StockPriceStats/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder persists outcome rows to a SQLite database. The unique
// index on the full row key makes duplicate inserts a no-op, so replaying
// overlapping batches can never double-append.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a batch job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS outcome_rows (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			window_days       INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			support_date      TEXT NOT NULL,
			support_level     REAL NOT NULL,
			wait_days         INTEGER NOT NULL,
			test_date         TEXT NOT NULL,
			expiry_days       INTEGER NOT NULL,
			expiry_date       TEXT NOT NULL,
			success           INTEGER NOT NULL,
			min_during_option REAL NOT NULL,
			days_to_break     INTEGER,
			break_pct         REAL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_outcome_key
			ON outcome_rows(window_days, symbol, support_date, wait_days, expiry_days)`,
		`CREATE INDEX IF NOT EXISTS idx_outcome_support_date
			ON outcome_rows(window_days, support_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// LoadResultSet reads all persisted rows for one window length.
func (r *SQLiteRecorder) LoadResultSet(windowDays int) (*model.ResultSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol, support_date, support_level, wait_days,
			test_date, expiry_days, expiry_date, success, min_during_option,
			days_to_break, break_pct
		FROM outcome_rows WHERE window_days = ?
		ORDER BY symbol, support_date, wait_days, expiry_days`, windowDays)
	if err != nil {
		return nil, fmt.Errorf("query outcome rows: %w", err)
	}
	defer rows.Close()

	rs := model.NewResultSet(windowDays)
	for rows.Next() {
		var (
			row                               model.OutcomeRow
			supportDate, testDate, expiryDate string
			success                           int
			daysToBreak                       sql.NullInt64
			breakPct                          sql.NullFloat64
		)
		if err := rows.Scan(&row.Symbol, &supportDate, &row.SupportLevel, &row.WaitDays,
			&testDate, &row.ExpiryDays, &expiryDate, &success, &row.MinDuringOption,
			&daysToBreak, &breakPct); err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}
		row.WindowDays = windowDays
		if row.SupportDate, err = time.Parse(dateLayout, supportDate); err != nil {
			return nil, fmt.Errorf("parse support_date %q: %w", supportDate, err)
		}
		if row.TestDate, err = time.Parse(dateLayout, testDate); err != nil {
			return nil, fmt.Errorf("parse test_date %q: %w", testDate, err)
		}
		if row.ExpiryDate, err = time.Parse(dateLayout, expiryDate); err != nil {
			return nil, fmt.Errorf("parse expiry_date %q: %w", expiryDate, err)
		}
		row.Success = success != 0
		if daysToBreak.Valid {
			d := int(daysToBreak.Int64)
			row.DaysToBreak = &d
		}
		if breakPct.Valid {
			p := breakPct.Float64
			row.BreakPct = &p
		}
		rs.Merge([]model.OutcomeRow{row})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome rows: %w", err)
	}
	return rs, nil
}

// AppendRows inserts rows inside a single transaction, ignoring rows whose
// key already exists. A batch is therefore visible to readers either
// entirely or not at all.
func (r *SQLiteRecorder) AppendRows(windowDays int, rows []model.OutcomeRow) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO outcome_rows
		(window_days, symbol, support_date, support_level, wait_days,
		 test_date, expiry_days, expiry_date, success, min_during_option,
		 days_to_break, break_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		var daysToBreak interface{}
		if row.DaysToBreak != nil {
			daysToBreak = *row.DaysToBreak
		}
		var breakPct interface{}
		if row.BreakPct != nil {
			breakPct = *row.BreakPct
		}
		success := 0
		if row.Success {
			success = 1
		}
		res, err := stmt.Exec(windowDays, row.Symbol, row.SupportDate.Format(dateLayout),
			row.SupportLevel, row.WaitDays, row.TestDate.Format(dateLayout),
			row.ExpiryDays, row.ExpiryDate.Format(dateLayout), success,
			row.MinDuringOption, daysToBreak, breakPct)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("insert outcome row: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return inserted, nil
}

// Reset deletes all rows for one window length.
func (r *SQLiteRecorder) Reset(windowDays int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec(`DELETE FROM outcome_rows WHERE window_days = ?`, windowDays); err != nil {
		return fmt.Errorf("reset window %d: %w", windowDays, err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
