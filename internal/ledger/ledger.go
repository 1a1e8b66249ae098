// Package ledger stores the history of acquisition requests in postgres.
package ledger

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/mediareq/core/logger"
	"github.com/m3rciful/mediareq/internal/conversation"
)

// Migrations holds the schema, applied from MigrationsDir at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

const component = "service.ledger"

// Entry is one recorded request.
type Entry struct {
	ID          int64         `db:"id"`
	UserID      int64         `db:"user_id"`
	MediaID     int64         `db:"media_id"`
	MediaType   string        `db:"media_type"`
	Title       string        `db:"title"`
	Seasons     pq.Int64Array `db:"seasons"`
	OK          bool          `db:"ok"`
	RequestedAt time.Time     `db:"requested_at"`
}

// Store reads and writes entries.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const insertEntry = `
INSERT INTO media_requests (user_id, media_id, media_type, title, seasons, ok, requested_at)
VALUES (:user_id, :media_id, :media_type, :title, :seasons, :ok, :requested_at)`

// Record inserts e.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Seasons == nil {
		e.Seasons = pq.Int64Array{}
	}
	if _, err := s.db.NamedExecContext(ctx, insertEntry, e); err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	return nil
}

const selectRecent = `
SELECT id, user_id, media_id, media_type, title, seasons, ok, requested_at
FROM media_requests
WHERE user_id = $1
ORDER BY requested_at DESC, id DESC
LIMIT $2`

// Recent returns the user's latest entries, newest first.
func (s *Store) Recent(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	var out []Entry
	if err := s.db.SelectContext(ctx, &out, selectRecent, userID, limit); err != nil {
		return nil, fmt.Errorf("ledger: select recent: %w", err)
	}
	return out, nil
}

// RecordSubmission stores a finished submission. Failures are logged and
// never reach the conversation.
func (s *Store) RecordSubmission(ctx context.Context, sub conversation.Submission) {
	e := FromSubmission(sub)
	if err := s.Record(ctx, e); err != nil {
		logger.Error(ctx, component, "ledger.record",
			slog.String("status", "fail"),
			slog.Int64("media_id", e.MediaID),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug(ctx, component, "ledger.record", slog.String("status", "ok"), slog.Int64("media_id", e.MediaID))
}

// FromSubmission converts a conversation outcome into a ledger entry.
func FromSubmission(sub conversation.Submission) Entry {
	seasons := make(pq.Int64Array, len(sub.Seasons))
	for i, n := range sub.Seasons {
		seasons[i] = int64(n)
	}
	return Entry{
		UserID:      sub.UserID,
		MediaID:     sub.Candidate.ID,
		MediaType:   string(sub.Candidate.Kind),
		Title:       sub.Candidate.Title,
		Seasons:     seasons,
		OK:          sub.OK,
		RequestedAt: sub.At.UTC(),
	}
}
