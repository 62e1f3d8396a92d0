// Package session defines the chat session record created for every
// committed match, plus the store used to persist it across restarts. The
// in-memory engine is authoritative for correctness; the store provides
// durability only.
package session

import (
	"crypto/sha256"
	"fmt"
)

// Session status values.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Session represents one committed pairing between two participants.
// Interests holds the intersection of both sides' interest sets: the
// genuinely shared ground, used downstream for icebreaker context.
type Session struct {
	ID           string
	ParticipantA string
	ParticipantB string
	Interests    []string
	StartedAt    int64 // unix timestamp
	EndedAt      int64 // unix timestamp, 0 while active
	Status       string
}

// Partner returns the other participant's id, or "" when the given id is
// not part of this session.
func (s *Session) Partner(id string) string {
	switch id {
	case s.ParticipantA:
		return s.ParticipantB
	case s.ParticipantB:
		return s.ParticipantA
	}
	return ""
}

// IsParticipant reports whether an id belongs to this session.
func (s *Session) IsParticipant(id string) bool {
	return id == s.ParticipantA || id == s.ParticipantB
}

// DeriveID computes the deterministic session id for a pair of
// participants. The pair is put in canonical (sorted) order before
// hashing, so DeriveID(a, b) == DeriveID(b, a).
func DeriveID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	h := sha256.Sum256([]byte(a + "\x00" + b))
	return fmt.Sprintf("%x", h[:8]) // 16-char hex prefix
}
