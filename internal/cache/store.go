// Package cache provides a SQLite-backed store for complete, previously
// fetched attack logs, keyed by war identifier.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"torn_war_payouts/internal/app"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS attack_log_cache (
	war_id      INTEGER PRIMARY KEY,
	fetched_at  INTEGER NOT NULL,
	event_count INTEGER NOT NULL,
	events      BLOB    NOT NULL
);`

// Store persists fetched attack logs in SQLite. A hit substitutes for an
// entire fetch; there is no partial merge.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the cache store, creating the database and schema as needed
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadAttackLog returns the cached event set for a war. The second return
// value is false on a cache miss. A corrupt row is reported as an error so
// the caller can fall back to a live fetch.
func (s *Store) LoadAttackLog(ctx context.Context, warID int) ([]app.CombatEvent, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var blob []byte
	var fetchedAt int64
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT events, fetched_at FROM attack_log_cache WHERE war_id = ?`, warID)
	if err := row.Scan(&blob, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache row for war %d: %w", warID, err)
	}

	var events []app.CombatEvent
	if err := json.Unmarshal(blob, &events); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for war %d: %w", warID, err)
	}

	log.Debug().
		Int("war_id", warID).
		Int("events", len(events)).
		Time("fetched_at", time.Unix(fetchedAt, 0)).
		Msg("Attack log cache hit")

	return events, true, nil
}

// SaveAttackLog stores the complete event set for a war, replacing any
// previous entry
func (s *Store) SaveAttackLog(ctx context.Context, warID int, events []app.CombatEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	blob, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode cache entry for war %d: %w", warID, err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO attack_log_cache (war_id, fetched_at, event_count, events)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(war_id) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			event_count = excluded.event_count,
			events = excluded.events`,
		warID, time.Now().Unix(), len(events), blob)
	if err != nil {
		return fmt.Errorf("write cache row for war %d: %w", warID, err)
	}

	log.Debug().
		Int("war_id", warID).
		Int("events", len(events)).
		Msg("Saved attack log to cache")

	return nil
}
