package signal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory signal log with a bounded capacity.
// Once full, the oldest records are dropped.
type MemoryStore struct {
	records []Record
	maxSize int
	mu      sync.RWMutex
	counter int64
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		records: make([]Record, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a record to the log.
func (m *MemoryStore) Save(ctx context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	record.ID = fmt.Sprintf("sig_%d_%d", time.Now().UnixNano(), m.counter)

	m.records = append(m.records, record)

	// Trim if over capacity (remove oldest)
	if len(m.records) > m.maxSize {
		m.records = m.records[len(m.records)-m.maxSize:]
	}

	return nil
}

// List returns records matching the filter, oldest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Record
	for _, rec := range m.records {
		if m.matches(rec, filter) {
			result = append(result, rec)
		}
	}

	// Apply offset and limit
	if filter.Offset > 0 && filter.Offset < len(result) {
		result = result[filter.Offset:]
	} else if filter.Offset >= len(result) && filter.Offset > 0 {
		return []Record{}, nil
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching records.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if m.matches(rec, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) matches(rec Record, filter ListFilter) bool {
	if filter.RunID != "" && rec.RunID != filter.RunID {
		return false
	}
	if filter.Ticker != "" && rec.Ticker != filter.Ticker {
		return false
	}
	if filter.Strategy != "" && rec.Strategy != filter.Strategy {
		return false
	}
	if filter.Action != "" && rec.Action != filter.Action {
		return false
	}
	if !filter.From.IsZero() && rec.Time.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && rec.Time.After(filter.To) {
		return false
	}
	return true
}
