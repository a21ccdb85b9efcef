// Package ledger records viewer sessions: who watched, over which transport,
// for how long and how large their terminal got. Tank contents are never
// persisted.
package ledger

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when a session id has no record.
var ErrNotFound = errors.New("ledger: session not found")

// Record describes one viewer session.
type Record struct {
	ID        string
	Transport string
	Remote    string
	Started   time.Time
	// Ended is zero while the session is live.
	Ended    time.Time
	Frames   int64
	PeakRows int
	PeakCols int
	Reason   string
}

// Live reports whether the session has not been finished yet.
func (r Record) Live() bool { return r.Ended.IsZero() }

// Duration is the session length so far, measured against now for live
// sessions.
func (r Record) Duration(now time.Time) time.Duration {
	if r.Live() {
		return now.Sub(r.Started)
	}
	return r.Ended.Sub(r.Started)
}

// Store persists session records.
type Store interface {
	Init(ctx context.Context) error
	Open(ctx context.Context, rec Record) error
	Observe(ctx context.Context, id string, rows, cols int) error
	Finish(ctx context.Context, id string, frames int64, reason string) error
	Get(ctx context.Context, id string) (Record, error)
	Recent(ctx context.Context, n int) ([]Record, error)
	Active(ctx context.Context) ([]Record, error)
}

// sortNewestFirst orders by start time descending, then id.
func sortNewestFirst(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Started.Equal(recs[j].Started) {
			return recs[i].Started.After(recs[j].Started)
		}
		return recs[i].ID < recs[j].ID
	})
}
