// Package events publishes the engine's structured lifecycle events over
// NATS: an observability stream on match.events.<type>, plus per-
// participant pushes for matches and expiries. This replaces the
// console-log-driven debugging of earlier implementations with payloads a
// real pipeline can consume.
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/driftchat/matchd/internal/messaging"
	"github.com/driftchat/matchd/internal/session"
)

// Event type names, used as the match.events subject suffix.
const (
	TypeMatchCommitted    = "match_committed"
	TypeCandidateRejected = "candidate_rejected"
	TypeParticipantQueued = "participant_queued"
	TypeExpiryRun         = "expiry_run"
	TypeSessionEnded      = "session_ended"
)

// MatchFound is the payload pushed to each matched participant on
// match.found.<participant_id>.
type MatchFound struct {
	EventID         string   `json:"event_id"`
	SessionID       string   `json:"session_id"`
	PartnerID       string   `json:"partner_id"`
	SharedInterests []string `json:"shared_interests,omitempty"`
	Score           float64  `json:"score"`
}

// MatchExpired is the payload pushed to a participant evicted from the
// wait pool on match.expired.<participant_id>.
type MatchExpired struct {
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
}

type matchCommitted struct {
	EventID      string   `json:"event_id"`
	At           int64    `json:"at"`
	SessionID    string   `json:"session_id"`
	Participants []string `json:"participants"`
	Score        float64  `json:"score"`
}

type candidateRejected struct {
	EventID     string `json:"event_id"`
	At          int64  `json:"at"`
	SubmitterID string `json:"submitter_id"`
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
}

type participantQueued struct {
	EventID       string `json:"event_id"`
	At            int64  `json:"at"`
	ParticipantID string `json:"participant_id"`
	Position      int    `json:"position"`
	QueueLength   int    `json:"queue_length"`
}

type expiryRun struct {
	EventID string   `json:"event_id"`
	At      int64    `json:"at"`
	Expired []string `json:"expired"`
}

type sessionEnded struct {
	EventID   string `json:"event_id"`
	At        int64  `json:"at"`
	SessionID string `json:"session_id"`
}

// Publisher implements the engine's event sink on top of NATS. Publish
// failures are logged, never propagated: events are observability, not
// correctness.
type Publisher struct {
	nc *messaging.Client
}

// NewPublisher creates a NATS-backed event publisher.
func NewPublisher(nc *messaging.Client) *Publisher {
	return &Publisher{nc: nc}
}

// MatchCommitted publishes the commit on the event stream and pushes a
// MatchFound notification to both participants.
func (p *Publisher) MatchCommitted(s *session.Session, score float64) {
	p.emit(TypeMatchCommitted, matchCommitted{
		EventID:      uuid.New().String(),
		At:           time.Now().Unix(),
		SessionID:    s.ID,
		Participants: []string{s.ParticipantA, s.ParticipantB},
		Score:        score,
	})

	for _, id := range []string{s.ParticipantA, s.ParticipantB} {
		found := MatchFound{
			EventID:         uuid.New().String(),
			SessionID:       s.ID,
			PartnerID:       s.Partner(id),
			SharedInterests: s.Interests,
			Score:           score,
		}
		data, err := json.Marshal(found)
		if err != nil {
			log.Printf("[events] marshal match.found for %s: %v", id, err)
			continue
		}
		if err := p.nc.PublishMatchFound(id, data); err != nil {
			log.Printf("[events] publish match.found for %s: %v", id, err)
		}
	}
}

// CandidateRejected publishes a commit-race rejection.
func (p *Publisher) CandidateRejected(submitterID, candidateID, reason string) {
	p.emit(TypeCandidateRejected, candidateRejected{
		EventID:     uuid.New().String(),
		At:          time.Now().Unix(),
		SubmitterID: submitterID,
		CandidateID: candidateID,
		Reason:      reason,
	})
}

// ParticipantQueued publishes a queue placement.
func (p *Publisher) ParticipantQueued(participantID string, position, queueLength int) {
	p.emit(TypeParticipantQueued, participantQueued{
		EventID:       uuid.New().String(),
		At:            time.Now().Unix(),
		ParticipantID: participantID,
		Position:      position,
		QueueLength:   queueLength,
	})
}

// ExpiryRun publishes the sweep result and pushes a MatchExpired
// notification to every evicted participant.
func (p *Publisher) ExpiryRun(expired []string) {
	p.emit(TypeExpiryRun, expiryRun{
		EventID: uuid.New().String(),
		At:      time.Now().Unix(),
		Expired: expired,
	})

	for _, id := range expired {
		data, err := json.Marshal(MatchExpired{
			EventID:       uuid.New().String(),
			ParticipantID: id,
		})
		if err != nil {
			log.Printf("[events] marshal match.expired for %s: %v", id, err)
			continue
		}
		if err := p.nc.PublishMatchExpired(id, data); err != nil {
			log.Printf("[events] publish match.expired for %s: %v", id, err)
		}
	}
}

// SessionEnded publishes a session-end event.
func (p *Publisher) SessionEnded(sessionID string) {
	p.emit(TypeSessionEnded, sessionEnded{
		EventID:   uuid.New().String(),
		At:        time.Now().Unix(),
		SessionID: sessionID,
	})
}

func (p *Publisher) emit(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[events] marshal %s: %v", eventType, err)
		return
	}
	if err := p.nc.PublishEvent(eventType, data); err != nil {
		log.Printf("[events] publish %s: %v", eventType, err)
	}
}
