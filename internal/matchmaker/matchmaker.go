// Package matchmaker orchestrates pairing. A submit registers the
// arriving participant, scores it against everyone in the wait pool,
// and either commits a match atomically or enqueues the newcomer. One
// engine mutex guards the registry/pool pair for the whole
// select-and-commit sequence, so concurrent submitters can never both
// claim the same candidate; persistence and event publication happen
// after the in-memory commit, never under the lock.
package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/driftchat/matchd/internal/interest"
	"github.com/driftchat/matchd/internal/metrics"
	"github.com/driftchat/matchd/internal/registry"
	"github.com/driftchat/matchd/internal/session"
	"github.com/driftchat/matchd/internal/waitpool"
)

// ErrStoreUnavailable wraps session-store failures that occur after a
// successful in-memory commit. The match stands; the caller may retry
// the persistence write but must never undo the pairing.
var ErrStoreUnavailable = errors.New("matchmaker: session store unavailable")

// Config holds the engine's tunables. Threshold is the minimum Jaccard
// similarity, exclusive, for a pairing; earlier implementations hard-coded
// divergent values, so it is a single named knob here.
type Config struct {
	Threshold     float64
	StaleAfter    time.Duration // waiting longer than this expires a participant
	WaitPerQueued time.Duration // wait estimate per queued participant
	EndedTTL      time.Duration // store retention after a session ends
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.3,
		StaleAfter:    2 * time.Minute,
		WaitPerQueued: 30 * time.Second,
		EndedTTL:      5 * time.Minute,
	}
}

// Result is the outcome of a Submit call: a committed match, or a queue
// placement when no candidate scored above the threshold.
type Result struct {
	Matched         bool
	SessionID       string
	PartnerID       string
	Score           float64
	SharedInterests []string
	QueuePosition   int // 1-based, zero when matched
	QueueLength     int
	EstimatedWait   time.Duration
}

// Matchmaker pairs participants by interest similarity. The zero value is
// not usable; construct with New.
type Matchmaker struct {
	mu       sync.Mutex
	cfg      Config
	registry *registry.Registry
	pool     *waitpool.Pool
	store    session.Store
	events   Events
	archive  Archiver
	sessions map[string]*session.Session // live sessions, authoritative
}

// New creates a matchmaker. The store is required; events and archive may
// be nil, in which case events are discarded and nothing is archived.
func New(cfg Config, store session.Store, events Events, archive Archiver) *Matchmaker {
	if store == nil {
		panic("matchmaker: nil session store")
	}
	if events == nil {
		events = NopEvents{}
	}
	return &Matchmaker{
		cfg:      cfg,
		registry: registry.New(),
		pool:     waitpool.New(),
		store:    store,
		events:   events,
		archive:  archive,
		sessions: make(map[string]*session.Session),
	}
}

type rejection struct {
	submitter string
	candidate string
	reason    string
}

// Submit registers a participant and attempts to pair it with the best
// waiting candidate. Registration failures propagate to the caller.
// When the commit against a selected candidate fails (the candidate
// withdrew or expired between scoring and commit), selection retries
// with that candidate excluded rather than failing the submission.
//
// On a match, a non-nil Result may be returned together with an error
// wrapping ErrStoreUnavailable: the pairing is committed in memory and
// only its persistence failed.
func (m *Matchmaker) Submit(ctx context.Context, participantID string, interests []string) (*Result, error) {
	m.mu.Lock()

	p, err := m.registry.Register(participantID, interests)
	if err != nil {
		m.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	excluded := make(map[string]struct{})
	var rejected []rejection

	for {
		winnerID, score := m.selectLocked(p, excluded)

		if winnerID == "" {
			m.pool.Enqueue(p.ID)
			position, _ := m.pool.PositionOf(p.ID)
			length := m.pool.Len()
			m.mu.Unlock()

			metrics.SubmissionsTotal.WithLabelValues("queued").Inc()
			metrics.QueueSize.Set(float64(length))
			m.emitRejections(rejected)
			m.events.ParticipantQueued(p.ID, position, length)

			return &Result{
				QueuePosition: position,
				QueueLength:   length,
				EstimatedWait: time.Duration(length) * m.cfg.WaitPerQueued,
			}, nil
		}

		if err := m.registry.MarkMatched(p.ID, winnerID); err != nil {
			// The candidate changed state between scoring and commit
			// (concurrent withdraw or expiry). Reselect without it.
			excluded[winnerID] = struct{}{}
			rejected = append(rejected, rejection{p.ID, winnerID, err.Error()})
			continue
		}
		m.pool.Remove(winnerID)

		winner, err := m.registry.Get(winnerID)
		if err != nil {
			panic("matchmaker: committed candidate missing from registry: " + winnerID)
		}

		now := time.Now()
		sess := &session.Session{
			ID:           session.DeriveID(p.ID, winnerID),
			ParticipantA: p.ID,
			ParticipantB: winnerID,
			Interests:    interest.Shared(p.Interests, winner.Interests),
			StartedAt:    now.Unix(),
			Status:       session.StatusActive,
		}
		m.sessions[sess.ID] = sess

		length := m.pool.Len()
		active := len(m.sessions)
		waited := now.Sub(winner.ArrivalTime)
		m.mu.Unlock()

		metrics.SubmissionsTotal.WithLabelValues("matched").Inc()
		metrics.QueueSize.Set(float64(length))
		metrics.ActiveSessions.Set(float64(active))
		metrics.MatchScore.Observe(score)
		metrics.TimeToMatch.Observe(waited.Seconds())
		m.emitRejections(rejected)
		m.events.MatchCommitted(sess, score)

		result := &Result{
			Matched:         true,
			SessionID:       sess.ID,
			PartnerID:       winnerID,
			Score:           score,
			SharedInterests: append([]string(nil), sess.Interests...),
		}

		if err := m.store.Save(ctx, sess); err != nil {
			return result, fmt.Errorf("%w: save session %s: %v", ErrStoreUnavailable, sess.ID, err)
		}
		return result, nil
	}
}

// selectLocked scans the wait pool in arrival order and returns the id and
// score of the best candidate strictly above the threshold, or "" when
// nobody qualifies. Because the pool is ordered oldest first and only a
// strictly higher score displaces the incumbent, equal top scores resolve
// to the earliest arrival. Callers must hold m.mu.
func (m *Matchmaker) selectLocked(p *registry.Participant, excluded map[string]struct{}) (string, float64) {
	bestID := ""
	bestScore := m.cfg.Threshold

	for _, id := range m.pool.Candidates(p.ID) {
		if _, skip := excluded[id]; skip {
			continue
		}
		cand, err := m.registry.Get(id)
		if err != nil || cand.State != registry.StateWaiting {
			// The pool can be briefly stale; the registry is
			// authoritative and the sweep reconciles leftovers.
			continue
		}
		if score := interest.Score(p.Interests, cand.Interests); score > bestScore {
			bestID, bestScore = id, score
		}
	}

	if bestID == "" {
		return "", 0
	}
	return bestID, bestScore
}

func (m *Matchmaker) emitRejections(rejected []rejection) {
	for _, r := range rejected {
		m.events.CandidateRejected(r.submitter, r.candidate, r.reason)
	}
}
