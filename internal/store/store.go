// Package store keeps privacy-conscious analytics in SQLite: page visits with
// hashed client addresses and the sections each page view revealed.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Visit is one tracked page load.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"` // hashed instead of raw IP for privacy
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	ViewID    string    `json:"view_id"`
	Timestamp time.Time `json:"timestamp"`
}

// SectionStat counts how many views revealed a component.
type SectionStat struct {
	Target string `json:"target"`
	Views  int64  `json:"views"`
}

type Stats struct {
	TotalVisitors    int64         `json:"total_visitors"`
	UniqueVisitors   int64         `json:"unique_visitors"`
	VisitorsToday    int64         `json:"visitors_today"`
	VisitorsThisWeek int64         `json:"visitors_this_week"`
	TotalReveals     int64         `json:"total_reveals"`
	Sections         []SectionStat `json:"sections"`
	RecentVisitors   []Visit       `json:"recent_visitors"`
}

type Store struct {
	db   *sql.DB
	log  *zap.Logger
	salt string
	now  func() time.Time

	mu      sync.Mutex
	closing bool
	pending sync.WaitGroup
}

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	view_id TEXT,
	timestamp DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS reveals (
	view_id TEXT NOT NULL,
	target TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	PRIMARY KEY (view_id, target)
);
CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors(timestamp);
CREATE INDEX IF NOT EXISTS reveals_timestamp ON reveals(timestamp);
`

// Open opens (creating if needed) the database at path. ":memory:" works for
// tests.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	salt, err := randomHex(32)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("analytics store ready", zap.String("path", path))
	return &Store{db: db, log: log, salt: salt, now: time.Now}, nil
}

// Close waits for background writes started with Go, then closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	s.mu.Unlock()

	s.pending.Wait()
	return s.db.Close()
}

// Go runs a write in the background with a bounded context. Writes submitted
// after Close has started are dropped.
func (s *Store) Go(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

// HashIP hashes an address with the per-process salt. The same address maps
// to the same hash for the lifetime of the process.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *Store) RecordVisit(ctx context.Context, ip, userAgent, path, viewID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, view_id, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, s.HashIP(ip), userAgent, path, viewID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordReveal notes that a view revealed target. Repeats are ignored.
func (s *Store) RecordReveal(ctx context.Context, viewID, target string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO reveals (view_id, target, timestamp) VALUES (?, ?, ?)
	`, viewID, target, s.now().UTC())
	if err != nil {
		return fmt.Errorf("record reveal: %w", err)
	}
	return nil
}

// Cleanup deletes analytics older than retention and returns the row count.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	var total int64
	for _, table := range []string{"visitors", "reveals"} {
		res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		s.log.Info("privacy cleanup", zap.Int64("rows", total), zap.Duration("retention", retention))
	}
	return total, nil
}

// Stats gathers the admin dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, "SELECT COUNT(*) FROM visitors", nil},
		{&stats.UniqueVisitors, "SELECT COUNT(DISTINCT hashed_ip) FROM visitors", nil},
		{&stats.VisitorsToday, "SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{today}},
		{&stats.VisitorsThisWeek, "SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{now.Add(-7 * 24 * time.Hour)}},
		{&stats.TotalReveals, "SELECT COUNT(*) FROM reveals", nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT target, COUNT(*) AS views
		FROM reveals
		GROUP BY target
		ORDER BY views DESC, target
	`)
	if err != nil {
		return nil, fmt.Errorf("section stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st SectionStat
		if err := rows.Scan(&st.Target, &st.Views); err != nil {
			return nil, fmt.Errorf("scan section stat: %w", err)
		}
		stats.Sections = append(stats.Sections, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentVisitors, err = s.RecentVisits(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentVisits returns the newest visits first.
func (s *Store) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), COALESCE(view_id, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.ViewID, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Token returns a random hex token, used for admin sessions.
func Token() (string, error) {
	return randomHex(32)
}
