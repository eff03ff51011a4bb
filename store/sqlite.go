package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lixenwraith/fusion-sim/core"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStore implements EpisodeStore on a SQLite database.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
// MemoryDSN gives a throwaway in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path != MemoryDSN {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; also keeps an in-memory database alive on one connection
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// RecordEpisode inserts one summary.
func (s *SQLiteStore) RecordEpisode(ctx context.Context, summary core.EpisodeSummary) error {
	final, err := json.Marshal(summary.Final)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry: %w", err)
	}
	settings, err := json.Marshal(summary.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO episodes (
			episode, seed, started_at, duration_ns, ticks, total_energy_mev, total_fusions,
			peak_fusion_rate, outcome, score, final_telemetry, settings, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(summary.Episode),
		int64(summary.Seed),
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		int64(summary.Duration),
		int64(summary.Ticks),
		summary.TotalEnergyMeV,
		summary.TotalFusions,
		summary.PeakFusionRate,
		string(summary.Outcome),
		summary.Score,
		string(final),
		string(settings),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	return nil
}

// TopEpisodes returns up to n summaries ordered by score, ties broken by recency.
func (s *SQLiteStore) TopEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error) {
	return s.query(ctx, `ORDER BY score DESC, id DESC LIMIT ?`, n)
}

// RecentEpisodes returns up to n summaries, newest first.
func (s *SQLiteStore) RecentEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error) {
	return s.query(ctx, `ORDER BY id DESC LIMIT ?`, n)
}

// EpisodesByOutcome returns up to n summaries with the given outcome, best first.
func (s *SQLiteStore) EpisodesByOutcome(ctx context.Context, outcome core.Outcome, n int) ([]core.EpisodeSummary, error) {
	return s.query(ctx, `WHERE outcome = ? ORDER BY score DESC, id DESC LIMIT ?`, string(outcome), n)
}

// CountEpisodes returns the number of stored summaries.
func (s *SQLiteStore) CountEpisodes(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count episodes: %w", err)
	}
	return count, nil
}

// Close closes the database.
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

func (s *SQLiteStore) query(ctx context.Context, tail string, args ...any) ([]core.EpisodeSummary, error) {
	if n, ok := args[len(args)-1].(int); ok && n <= 0 {
		return []core.EpisodeSummary{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT episode, seed, started_at, duration_ns, ticks, total_energy_mev, total_fusions,
		       peak_fusion_rate, outcome, score, final_telemetry, settings
		FROM episodes `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	out := []core.EpisodeSummary{}
	for rows.Next() {
		summary, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate episodes: %w", err)
	}
	return out, nil
}

func scanEpisode(rows *sql.Rows) (core.EpisodeSummary, error) {
	var (
		summary                   core.EpisodeSummary
		episode, seed, dur, ticks int64
		startedAt, outcome        string
		finalJSON, settingsJSON   string
	)
	err := rows.Scan(&episode, &seed, &startedAt, &dur, &ticks, &summary.TotalEnergyMeV,
		&summary.TotalFusions, &summary.PeakFusionRate, &outcome, &summary.Score,
		&finalJSON, &settingsJSON)
	if err != nil {
		return summary, fmt.Errorf("failed to scan episode: %w", err)
	}

	summary.Episode = uint64(episode)
	summary.Seed = uint64(seed)
	summary.Duration = time.Duration(dur)
	summary.Ticks = uint64(ticks)
	summary.Outcome = core.Outcome(outcome)
	if summary.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return summary, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if err := json.Unmarshal([]byte(finalJSON), &summary.Final); err != nil {
		return summary, fmt.Errorf("failed to decode telemetry: %w", err)
	}
	if err := json.Unmarshal([]byte(settingsJSON), &summary.Settings); err != nil {
		return summary, fmt.Errorf("failed to decode settings: %w", err)
	}
	return summary, nil
}
