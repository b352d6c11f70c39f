package store

import (
	"context"
	"sync"
	"time"

	"github.com/erimojdehi/aris-driver-check/internal/model"
)

// MemoryStore is a map-backed snapshot store for tests and database-less
// runs. RecordSets are treated as immutable once written, matching the
// pipeline's contract, so they are held by reference.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string]*model.RecordSet
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]*model.RecordSet)}
}

// Write stores the set under its date, replacing any existing snapshot
func (s *MemoryStore) Write(ctx context.Context, set *model.RecordSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[dateKey(set.Date)] = set
	return nil
}

// Read returns the set stored for a date, or nil when none exists
func (s *MemoryStore) Read(ctx context.Context, date time.Time) (*model.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets[dateKey(date)], nil
}

// Dates returns all stored dates, newest first
func (s *MemoryStore) Dates(ctx context.Context) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dates []time.Time
	for key := range s.sets {
		d, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sortDatesDesc(dates)
	return dates, nil
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

func sortDatesDesc(dates []time.Time) {
	for i := 0; i < len(dates)-1; i++ {
		for j := i + 1; j < len(dates); j++ {
			if dates[j].After(dates[i]) {
				dates[i], dates[j] = dates[j], dates[i]
			}
		}
	}
}
