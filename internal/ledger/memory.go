package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	records     map[string]Record
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.records = make(map[string]Record)
	return nil
}

func (s *MemoryStore) Open(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("ledger: record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("ledger: store is not initialized")
	}
	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("ledger: session %s already open", rec.ID)
	}
	if rec.Started.IsZero() {
		rec.Started = s.now()
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Observe(_ context.Context, id string, rows, cols int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.PeakRows = max(rec.PeakRows, rows)
	rec.PeakCols = max(rec.PeakCols, cols)
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) Finish(_ context.Context, id string, frames int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if !rec.Live() {
		return nil
	}
	rec.Ended = s.now()
	rec.Frames = frames
	rec.Reason = reason
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Recent(_ context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Active(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range s.records {
		if rec.Live() {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}
