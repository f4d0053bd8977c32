// Package store handles SQLite persistence of race history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/verte-zerg/typerace/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for race records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS races (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			passage_chars INTEGER NOT NULL,
			opponents INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			place INTEGER NOT NULL,
			winner TEXT NOT NULL,
			finished INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_races_ended_at ON races(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRace stores a finished race and returns its ID. A record without an
// ID gets a new KSUID.
func (s *Store) InsertRace(ctx context.Context, rec model.RaceRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = ksuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO races (id, started_at, ended_at, passage_chars, opponents, wpm, accuracy, errors, elapsed_seconds, place, winner, finished)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.PassageChars,
		rec.Opponents,
		rec.WPM,
		rec.Accuracy,
		rec.Errors,
		rec.ElapsedSeconds,
		rec.Place,
		rec.Winner,
		rec.Finished,
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListRaces returns races filtered by stats config, oldest first. Last
// keeps only the most recent N races.
func (s *Store) ListRaces(ctx context.Context, cfg model.StatsConfig) ([]model.RaceRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, passage_chars, opponents, wpm, accuracy, errors, elapsed_seconds, place, winner, finished
		FROM races
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var races []model.RaceRecord
	for rows.Next() {
		var rec model.RaceRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.PassageChars, &rec.Opponents, &rec.WPM,
			&rec.Accuracy, &rec.Errors, &rec.ElapsedSeconds, &rec.Place, &rec.Winner, &rec.Finished); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		races = append(races, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(races) > cfg.Last {
		races = races[len(races)-cfg.Last:]
	}
	return races, nil
}

// PlaceCounts returns how many races ended in each place.
func (s *Store) PlaceCounts(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT place, COUNT(*) FROM races GROUP BY place`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	counts := map[int]int{}
	for rows.Next() {
		var place, count int
		if err := rows.Scan(&place, &count); err != nil {
			return nil, err
		}
		counts[place] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
