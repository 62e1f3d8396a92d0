// Package archive provides PostgreSQL-backed storage for ended chat
// sessions. Each row captures who was paired, the interests they shared,
// and how long the conversation lasted, for offline analysis.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/driftchat/matchd/internal/session"
)

// Store archives ended sessions in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates an archive backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts an ended session. Recording the same session twice is a
// no-op, so concurrent end requests never produce duplicate rows.
func (s *Store) Record(ctx context.Context, sess *session.Session) error {
	duration := int64(0)
	if sess.EndedAt > sess.StartedAt {
		duration = sess.EndedAt - sess.StartedAt
	}

	const query = `
		INSERT INTO chat_sessions (session_id, participant_a, participant_b, interests, started_at, ended_at, duration_seconds)
		VALUES ($1, $2, $3, $4, to_timestamp($5), to_timestamp($6), $7)
		ON CONFLICT (session_id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		sess.ID,
		sess.ParticipantA,
		sess.ParticipantB,
		pq.Array(sess.Interests),
		sess.StartedAt,
		sess.EndedAt,
		duration,
	)
	if err != nil {
		return fmt.Errorf("archive: insert: %w", err)
	}
	return nil
}

// CountRecent returns the number of sessions archived within the given
// window. Useful for dashboards and reconciliation checks.
func (s *Store) CountRecent(ctx context.Context, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM chat_sessions
		WHERE ended_at >= NOW() - $1::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("archive: count recent: %w", err)
	}
	return count, nil
}
