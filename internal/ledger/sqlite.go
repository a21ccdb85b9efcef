//go:build sqlite

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string
	now  func() time.Time

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path, now: time.Now}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Open(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("ledger: record id is required")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if rec.Started.IsZero() {
		rec.Started = s.now()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO sessions (id, transport, remote, started, ended, frames, peak_rows, peak_cols, reason)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?, '')
	`, rec.ID, rec.Transport, rec.Remote, rec.Started.UnixNano(), rec.PeakRows, rec.PeakCols)
	return err
}

func (s *SQLiteStore) Observe(ctx context.Context, id string, rows, cols int) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE sessions SET
			peak_rows = MAX(peak_rows, ?),
			peak_cols = MAX(peak_cols, ?)
		WHERE id = ?
	`, rows, cols, id)
	return expectRow(res, err)
}

func (s *SQLiteStore) Finish(ctx context.Context, id string, frames int64, reason string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE sessions SET ended = ?, frames = ?, reason = ?
		WHERE id = ? AND ended = 0
	`, s.now().UnixNano(), frames, reason, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either unknown or already finished; only the former is an error.
		_, err := s.Get(ctx, id)
		return err
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, err
	}

	row := db.QueryRowContext(ctx, selectSessions+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Record, error) {
	if n < 0 {
		n = -1
	}
	return s.query(ctx, selectSessions+` ORDER BY started DESC, id ASC LIMIT ?`, n)
}

func (s *SQLiteStore) Active(ctx context.Context) ([]Record, error) {
	return s.query(ctx, selectSessions+` WHERE ended = 0 ORDER BY started DESC, id ASC`)
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

const selectSessions = `SELECT id, transport, remote, started, ended, frames, peak_rows, peak_cols, reason FROM sessions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec            Record
		started, ended int64
	)
	if err := row.Scan(&rec.ID, &rec.Transport, &rec.Remote, &started, &ended, &rec.Frames, &rec.PeakRows, &rec.PeakCols, &rec.Reason); err != nil {
		return Record{}, err
	}
	rec.Started = time.Unix(0, started)
	if ended != 0 {
		rec.Ended = time.Unix(0, ended)
	}
	return rec, nil
}

func expectRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			transport TEXT NOT NULL,
			remote TEXT NOT NULL,
			started INTEGER NOT NULL,
			ended INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			peak_rows INTEGER NOT NULL DEFAULT 0,
			peak_cols INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS sessions_started ON sessions (started);
	`)
	return err
}
