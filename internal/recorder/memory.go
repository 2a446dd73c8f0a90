package recorder

import (
	"sync"

	"github.com/datamilo/StockPriceStats/internal/model"
)

// MemoryRecorder keeps result sets in memory. Used by tests and dry runs
// where nothing should touch disk.
type MemoryRecorder struct {
	mu   sync.Mutex
	sets map[int]*model.ResultSet
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{sets: make(map[int]*model.ResultSet)}
}

func (m *MemoryRecorder) LoadResultSet(windowDays int) (*model.ResultSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rs := model.NewResultSet(windowDays)
	if stored, ok := m.sets[windowDays]; ok {
		rs.Merge(stored.Rows())
		rs.Sort()
	}
	return rs, nil
}

func (m *MemoryRecorder) AppendRows(windowDays int, rows []model.OutcomeRow) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sets[windowDays]
	if !ok {
		stored = model.NewResultSet(windowDays)
		m.sets[windowDays] = stored
	}
	added, _ := stored.Merge(rows)
	return added, nil
}

func (m *MemoryRecorder) Reset(windowDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, windowDays)
	return nil
}

func (m *MemoryRecorder) Close() error { return nil }
