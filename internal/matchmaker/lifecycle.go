package matchmaker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/driftchat/matchd/internal/metrics"
	"github.com/driftchat/matchd/internal/registry"
	"github.com/driftchat/matchd/internal/session"
)

// Withdraw removes a waiting participant from matchmaking and expires it.
// Withdrawing twice is a no-op the second time. It is safe to call while
// a concurrent Submit is selecting this participant: MarkMatched
// re-verifies state under the registry lock, so the submitter falls back
// to another candidate.
func (m *Matchmaker) Withdraw(participantID string) error {
	m.mu.Lock()
	m.pool.Remove(participantID)
	err := m.registry.Expire(participantID)
	length := m.pool.Len()
	m.mu.Unlock()

	metrics.QueueSize.Set(float64(length))
	return err
}

// StatusInfo describes a participant's current position in the lifecycle.
type StatusInfo struct {
	State         registry.State
	QueuePosition int // set while waiting
	QueueLength   int // set while waiting
	SessionID     string
	PartnerID     string
}

// Status reports whether a participant is waiting (with queue position),
// matched (with session and partner ids) or expired.
func (m *Matchmaker) Status(participantID string) (*StatusInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.registry.Get(participantID)
	if err != nil {
		return nil, err
	}

	info := &StatusInfo{State: p.State}
	switch p.State {
	case registry.StateWaiting:
		position, ok := m.pool.PositionOf(participantID)
		if !ok {
			panic("matchmaker: waiting participant absent from pool: " + participantID)
		}
		info.QueuePosition = position
		info.QueueLength = m.pool.Len()
	case registry.StateMatched:
		info.PartnerID = p.MatchedWith
		info.SessionID = session.DeriveID(participantID, p.MatchedWith)
	}
	return info, nil
}

// EndSession marks a session ended and releases both participants into
// the terminal expired state. Sessions absent from memory (after a
// restart) are resolved from the store. Ending an already-ended session
// is a no-op.
func (m *Matchmaker) EndSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()

	if !ok {
		loaded, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("%w: load session %s: %v", ErrStoreUnavailable, sessionID, err)
		}
		if loaded == nil {
			return fmt.Errorf("%w: session %s", registry.ErrNotFound, sessionID)
		}
		if loaded.Status == session.StatusEnded {
			return nil
		}
		sess = loaded
	}

	m.mu.Lock()
	if sess.Status == session.StatusEnded {
		m.mu.Unlock()
		return nil
	}
	sess.Status = session.StatusEnded
	sess.EndedAt = time.Now().Unix()
	for _, id := range []string{sess.ParticipantA, sess.ParticipantB} {
		// Expected to fail after a restart (participants live in
		// memory only) or when the side already left; the session
		// transition does not depend on it.
		if err := m.registry.MarkEnded(id); err != nil {
			log.Printf("[matchmaker] end session %s: %v", sessionID, err)
		}
	}
	delete(m.sessions, sessionID)
	active := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(active))
	m.events.SessionEnded(sessionID)

	if m.archive != nil {
		if err := m.archive.Record(ctx, sess); err != nil {
			log.Printf("[matchmaker] archive session %s: %v", sessionID, err)
		}
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("%w: save session %s: %v", ErrStoreUnavailable, sessionID, err)
	}
	if err := m.store.Expire(ctx, sessionID, m.cfg.EndedTTL); err != nil {
		return fmt.Errorf("%w: expire session %s: %v", ErrStoreUnavailable, sessionID, err)
	}
	return nil
}

// ExpireStale evicts every participant that has been waiting longer than
// the configured window and returns their ids. Safe to run concurrently
// with Submit: evicted candidates fail the commit re-verification and the
// submitter reselects.
func (m *Matchmaker) ExpireStale() []string {
	m.mu.Lock()
	expired := m.registry.ExpireStale(m.cfg.StaleAfter)
	for _, id := range expired {
		m.pool.Remove(id)
	}
	length := m.pool.Len()
	m.mu.Unlock()

	metrics.QueueSize.Set(float64(length))
	if len(expired) > 0 {
		metrics.ExpiredTotal.Add(float64(len(expired)))
		m.events.ExpiryRun(expired)
	}
	return expired
}
