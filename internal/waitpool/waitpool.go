// Package waitpool maintains the ordered set of participant ids awaiting
// a match. Insertion order is preserved (oldest first) for queue-position
// reporting and oldest-first fairness. The pool stores identifiers only;
// the registry remains authoritative for participant state.
package waitpool

import "sync"

// Pool is a FIFO-ordered set of participant ids. All methods are safe for
// concurrent use.
type Pool struct {
	mu      sync.Mutex
	order   []string
	present map[string]struct{}
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{present: make(map[string]struct{})}
}

// Enqueue appends an id to the pool. Enqueueing an id that is already
// present is a no-op, so retried submissions never create duplicates.
func (p *Pool) Enqueue(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.present[id]; ok {
		return
	}
	p.present[id] = struct{}{}
	p.order = append(p.order, id)
}

// Remove deletes an id from the pool. Removing an absent id is a no-op.
func (p *Pool) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.present[id]; !ok {
		return
	}
	delete(p.present, id)
	for i, queued := range p.order {
		if queued == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether an id is in the pool.
func (p *Pool) Contains(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.present[id]
	return ok
}

// PositionOf returns the 1-based arrival-order position of an id, or
// false when the id is not queued.
func (p *Pool) PositionOf(id string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.present[id]; !ok {
		return 0, false
	}
	for i, queued := range p.order {
		if queued == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Candidates returns all queued ids except the given one, in arrival
// order. The returned slice is a copy.
func (p *Pool) Candidates(excluding string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.order))
	for _, id := range p.order {
		if id == excluding {
			continue
		}
		out = append(out, id)
	}
	return out
}

// IDs returns a snapshot of all queued ids in arrival order.
func (p *Pool) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.order...)
}

// Len returns the number of queued ids.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.order)
}
