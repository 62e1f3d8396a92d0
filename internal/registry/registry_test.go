package registry

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegister_NormalizesInterests(t *testing.T) {
	r := New()

	p, err := r.Register("alice", []string{" Gaming ", "MUSIC", "gaming"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Interests) != 2 {
		t.Fatalf("expected 2 normalized interests, got %v", p.Interests)
	}
	if p.Interests[0] != "gaming" || p.Interests[1] != "music" {
		t.Errorf("unexpected normalized interests: %v", p.Interests)
	}
	if p.State != StateWaiting {
		t.Errorf("expected waiting state, got %s", p.State)
	}
}

func TestRegister_RejectsEmptyID(t *testing.T) {
	r := New()

	_, err := r.Register("", []string{"gaming"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegister_RejectsEmptyInterests(t *testing.T) {
	r := New()

	if _, err := r.Register("alice", nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil interests, got %v", err)
	}
	// Whitespace-only entries normalize away to nothing.
	if _, err := r.Register("alice", []string{"  ", ""}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank interests, got %v", err)
	}
}

func TestRegister_DuplicateLiveParticipant(t *testing.T) {
	r := New()

	if _, err := r.Register("alice", []string{"gaming"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Register("alice", []string{"music"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate registration, got %v", err)
	}
}

func TestRegister_ReclaimsExpiredID(t *testing.T) {
	r := New()

	if _, err := r.Register("alice", []string{"gaming"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Expire("alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Register("alice", []string{"music"})
	if err != nil {
		t.Fatalf("expected re-registration of expired id to succeed: %v", err)
	}
	if p.State != StateWaiting {
		t.Errorf("expected waiting state after re-registration, got %s", p.State)
	}
	if len(p.Interests) != 1 || p.Interests[0] != "music" {
		t.Errorf("expected fresh interests, got %v", p.Interests)
	}
}

func TestGet_Unknown(t *testing.T) {
	r := New()

	if _, err := r.Get("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	r := New()
	if _, err := r.Register("alice", []string{"gaming"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p1, _ := r.Get("alice")
	p1.Interests[0] = "mutated"
	p1.State = StateMatched

	p2, _ := r.Get("alice")
	if p2.Interests[0] != "gaming" || p2.State != StateWaiting {
		t.Error("Get should return an isolated copy")
	}
}

func TestMarkMatched_Symmetric(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")
	mustRegister(t, r, "bob", "gaming")

	if err := r.MarkMatched("alice", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := r.Get("alice")
	b, _ := r.Get("bob")
	if a.State != StateMatched || b.State != StateMatched {
		t.Errorf("both sides should be matched: %s / %s", a.State, b.State)
	}
	if a.MatchedWith != "bob" || b.MatchedWith != "alice" {
		t.Errorf("MatchedWith should be symmetric: %s / %s", a.MatchedWith, b.MatchedWith)
	}
}

func TestMarkMatched_SelfMatch(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")

	if err := r.MarkMatched("alice", "alice"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for self-match, got %v", err)
	}
}

func TestMarkMatched_UnknownParticipant(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")

	if err := r.MarkMatched("alice", "ghost"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for unknown candidate, got %v", err)
	}

	// The existing side must be untouched by the failed commit.
	a, _ := r.Get("alice")
	if a.State != StateWaiting || a.MatchedWith != "" {
		t.Errorf("failed commit should leave alice waiting, got %s/%q", a.State, a.MatchedWith)
	}
}

func TestMarkMatched_AlreadyMatched(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")
	mustRegister(t, r, "bob", "gaming")
	mustRegister(t, r, "carol", "gaming")

	if err := r.MarkMatched("alice", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.MarkMatched("carol", "bob"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for already-matched candidate, got %v", err)
	}

	c, _ := r.Get("carol")
	if c.State != StateWaiting {
		t.Errorf("loser should remain waiting, got %s", c.State)
	}
}

func TestMarkMatched_ConcurrentClaims(t *testing.T) {
	// Many submitters race to claim the same candidate; exactly one
	// commit must succeed.
	r := New()
	mustRegister(t, r, "target", "gaming")

	const claimers = 16
	for i := 0; i < claimers; i++ {
		mustRegister(t, r, claimerID(i), "gaming")
	}

	var wg sync.WaitGroup
	wins := make(chan string, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := r.MarkMatched(id, "target"); err == nil {
				wins <- id
			}
		}(claimerID(i))
	}
	wg.Wait()
	close(wins)

	var winners []string
	for id := range wins {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winning claim, got %d: %v", len(winners), winners)
	}

	target, _ := r.Get("target")
	if target.MatchedWith != winners[0] {
		t.Errorf("target matched with %s, but winner was %s", target.MatchedWith, winners[0])
	}
}

func TestMarkEnded_Transitions(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")
	mustRegister(t, r, "bob", "gaming")

	if err := r.MarkEnded("alice"); !errors.Is(err, ErrConflict) {
		t.Errorf("ending a waiting participant should conflict, got %v", err)
	}

	if err := r.MarkMatched("alice", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.MarkEnded("alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := r.Get("alice")
	if a.State != StateExpired {
		t.Errorf("expected expired after end, got %s", a.State)
	}

	if err := r.MarkEnded("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpire_Idempotent(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")

	if err := r.Expire("alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Expire("alice"); err != nil {
		t.Errorf("second expire should be a no-op, got %v", err)
	}
	if err := r.Expire("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpire_MatchedParticipant(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")
	mustRegister(t, r, "bob", "gaming")
	if err := r.MarkMatched("alice", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := r.Expire("alice"); !errors.Is(err, ErrConflict) {
		t.Errorf("expiring a matched participant should conflict, got %v", err)
	}
}

func TestExpireStale_EvictsOldWaiters(t *testing.T) {
	r := New()
	mustRegister(t, r, "old", "gaming")

	// Backdate the arrival past the window.
	r.mu.Lock()
	r.participants["old"].ArrivalTime = time.Now().Add(-time.Minute)
	r.mu.Unlock()

	mustRegister(t, r, "fresh", "gaming")

	expired := r.ExpireStale(30 * time.Second)
	if len(expired) != 1 || expired[0] != "old" {
		t.Fatalf("expected [old], got %v", expired)
	}

	old, _ := r.Get("old")
	fresh, _ := r.Get("fresh")
	if old.State != StateExpired {
		t.Errorf("old waiter should be expired, got %s", old.State)
	}
	if fresh.State != StateWaiting {
		t.Errorf("fresh waiter should remain waiting, got %s", fresh.State)
	}
}

func TestExpireStale_IgnoresMatched(t *testing.T) {
	r := New()
	mustRegister(t, r, "alice", "gaming")
	mustRegister(t, r, "bob", "gaming")
	if err := r.MarkMatched("alice", "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.mu.Lock()
	r.participants["alice"].ArrivalTime = time.Now().Add(-time.Hour)
	r.mu.Unlock()

	if expired := r.ExpireStale(time.Second); len(expired) != 0 {
		t.Errorf("matched participants must never be swept, got %v", expired)
	}
}

func TestWaitingIDs(t *testing.T) {
	r := New()
	mustRegister(t, r, "b", "gaming")
	mustRegister(t, r, "a", "gaming")
	mustRegister(t, r, "c", "gaming")
	if err := r.Expire("c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := r.WaitingIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected sorted waiting ids [a b], got %v", ids)
	}
}

func mustRegister(t *testing.T, r *Registry, id string, interests ...string) {
	t.Helper()
	if _, err := r.Register(id, interests); err != nil {
		t.Fatalf("failed to register %s: %v", id, err)
	}
}

func claimerID(i int) string {
	return "claimer-" + string(rune('a'+i))
}
