package matchmaker

import (
	"context"

	"github.com/driftchat/matchd/internal/session"
)

// Events receives structured notifications as the engine transitions
// state. Implementations are invoked outside the engine lock and should
// not block for long.
type Events interface {
	// MatchCommitted fires once per successful pairing, after the
	// in-memory commit.
	MatchCommitted(s *session.Session, score float64)

	// CandidateRejected fires when a selected candidate could not be
	// committed (withdrawn or expired between scoring and commit).
	CandidateRejected(submitterID, candidateID, reason string)

	// ParticipantQueued fires when a submission ends up in the wait pool.
	ParticipantQueued(participantID string, position, queueLength int)

	// ExpiryRun fires after a sweep that evicted at least one waiter.
	ExpiryRun(expired []string)

	// SessionEnded fires when a session is marked ended.
	SessionEnded(sessionID string)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) MatchCommitted(*session.Session, float64) {}
func (NopEvents) CandidateRejected(string, string, string) {}
func (NopEvents) ParticipantQueued(string, int, int)       {}
func (NopEvents) ExpiryRun([]string)                       {}
func (NopEvents) SessionEnded(string)                      {}

// Archiver records ended sessions in long-term storage. Archive failures
// are logged, never propagated: the in-memory lifecycle is authoritative.
type Archiver interface {
	Record(ctx context.Context, s *session.Session) error
}
