// Package registry owns the authoritative record of every active
// participant: interests, arrival time and match state. The wait pool
// holds identifiers only; every state transition goes through the
// registry, and the match commit is a single compare-and-commit so no
// other operation can observe one side of a pairing without the other.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/driftchat/matchd/internal/interest"
)

// State is a participant's position in the matchmaking lifecycle.
type State string

const (
	StateWaiting State = "waiting"
	StateMatched State = "matched"
	StateExpired State = "expired"
)

var (
	// ErrInvalidInput marks rejected registrations: empty ids or
	// interest sets that are empty after normalization.
	ErrInvalidInput = errors.New("registry: invalid input")

	// ErrConflict marks state-transition races: duplicate registration
	// of a live participant, self-match attempts, or a commit against a
	// participant that is no longer waiting.
	ErrConflict = errors.New("registry: conflict")

	// ErrNotFound marks lookups of unknown participant ids.
	ErrNotFound = errors.New("registry: not found")
)

// Participant is one anonymous user actively seeking or engaged in a chat.
type Participant struct {
	ID          string
	Interests   []string // normalized: lower-cased, trimmed, deduplicated
	ArrivalTime time.Time
	MatchedWith string // empty while waiting
	State       State
}

func (p *Participant) clone() *Participant {
	cp := *p
	cp.Interests = append([]string(nil), p.Interests...)
	return &cp
}

// Registry is the single source of truth for participant existence and
// state. All methods are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*Participant
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{participants: make(map[string]*Participant)}
}

// Register adds a participant in the waiting state. Interests are
// normalized before storage. Registering an id that already exists fails
// with ErrConflict unless the existing record is expired, in which case
// the id is reclaimed with a fresh arrival time.
func (r *Registry) Register(id string, interests []string) (*Participant, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty participant id", ErrInvalidInput)
	}
	norm := interest.Normalize(interests)
	if len(norm) == 0 {
		return nil, fmt.Errorf("%w: empty interest set", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.participants[id]; ok && existing.State != StateExpired {
		return nil, fmt.Errorf("%w: participant %s is already %s", ErrConflict, id, existing.State)
	}

	p := &Participant{
		ID:          id,
		Interests:   norm,
		ArrivalTime: time.Now(),
		State:       StateWaiting,
	}
	r.participants[id] = p
	return p.clone(), nil
}

// Get returns a copy of the participant record.
func (r *Registry) Get(id string) (*Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return nil, fmt.Errorf("%w: participant %s", ErrNotFound, id)
	}
	return p.clone(), nil
}

// MarkMatched atomically transitions both participants from waiting to
// matched and sets their symmetric MatchedWith references. It re-verifies,
// under the same lock, that both parties are still waiting immediately
// before committing; a caller that loses this check must reselect with the
// candidate excluded. Self-matches, unknown ids and non-waiting parties
// all fail with ErrConflict and leave both records untouched.
func (r *Registry) MarkMatched(a, b string) error {
	if a == b {
		return fmt.Errorf("%w: self-match for %s", ErrConflict, a)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pa, ok := r.participants[a]
	if !ok {
		return fmt.Errorf("%w: participant %s does not exist", ErrConflict, a)
	}
	pb, ok := r.participants[b]
	if !ok {
		return fmt.Errorf("%w: participant %s does not exist", ErrConflict, b)
	}
	if pa.State != StateWaiting {
		return fmt.Errorf("%w: participant %s is %s", ErrConflict, a, pa.State)
	}
	if pb.State != StateWaiting {
		return fmt.Errorf("%w: participant %s is %s", ErrConflict, b, pb.State)
	}

	pa.State, pb.State = StateMatched, StateMatched
	pa.MatchedWith, pb.MatchedWith = b, a
	return nil
}

// MarkEnded transitions a matched participant to the expired state. The
// caller is responsible for ending both sides of a session. MatchedWith is
// preserved as history; expired ids may re-register from scratch.
func (r *Registry) MarkEnded(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return fmt.Errorf("%w: participant %s", ErrNotFound, id)
	}
	if p.State != StateMatched {
		return fmt.Errorf("%w: participant %s is %s, not matched", ErrConflict, id, p.State)
	}
	p.State = StateExpired
	return nil
}

// Expire transitions a waiting participant to expired (the withdraw path).
// Expiring an already-expired participant is a no-op; expiring a matched
// participant fails with ErrConflict.
func (r *Registry) Expire(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return fmt.Errorf("%w: participant %s", ErrNotFound, id)
	}
	switch p.State {
	case StateExpired:
		return nil
	case StateMatched:
		return fmt.Errorf("%w: participant %s is matched", ErrConflict, id)
	}
	p.State = StateExpired
	return nil
}

// ExpireStale transitions every waiting participant whose arrival exceeds
// the given age to expired and returns their ids, sorted, for eviction
// from the wait pool.
func (r *Registry) ExpireStale(olderThan time.Duration) []string {
	cutoff := time.Now().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for id, p := range r.participants {
		if p.State == StateWaiting && p.ArrivalTime.Before(cutoff) {
			p.State = StateExpired
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// WaitingIDs returns the ids of all waiting participants, sorted. Used for
// pool consistency checks and the expiry sweep.
func (r *Registry) WaitingIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, p := range r.participants {
		if p.State == StateWaiting {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
