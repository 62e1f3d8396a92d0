// Package service hosts the matchmaking engine on NATS. It subscribes to
// the request subjects, decodes payloads, invokes the engine, replies to
// reply-aware requests, and drives the background expiry sweep.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/driftchat/matchd/internal/matchmaker"
	"github.com/driftchat/matchd/internal/messaging"
)

// Service wires the engine to NATS.
type Service struct {
	engine        *matchmaker.Matchmaker
	nats          *messaging.Client
	sweepInterval time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
}

// New creates a service around an engine. sweepInterval controls how
// often the stale sweep runs.
func New(engine *matchmaker.Matchmaker, nc *messaging.Client, sweepInterval time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		engine:        engine,
		nats:          nc,
		sweepInterval: sweepInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start subscribes to the request subjects and starts the sweep loop.
func (s *Service) Start() error {
	if err := s.nats.SubscribeSubmit(s.handleSubmit); err != nil {
		return err
	}
	if err := s.nats.SubscribeWithdraw(s.handleWithdraw); err != nil {
		return err
	}
	if err := s.nats.SubscribeStatus(s.handleStatus); err != nil {
		return err
	}
	if err := s.nats.SubscribeEndSession(s.handleEndSession); err != nil {
		return err
	}

	go s.sweepLoop()

	log.Println("[service] matchmaking service started")
	return nil
}

// Stop shuts down the sweep loop.
func (s *Service) Stop() {
	s.cancel()
	log.Println("[service] matchmaking service stopped")
}

func (s *Service) handleSubmit(msg *nats.Msg) {
	var req SubmitRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Printf("[service] invalid submit request: %v", err)
		return
	}

	result, err := s.engine.Submit(s.ctx, req.ParticipantID, req.Interests)
	s.reply(msg, submitResponse(result, err))
}

func (s *Service) handleWithdraw(msg *nats.Msg) {
	var req WithdrawRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Printf("[service] invalid withdraw request: %v", err)
		return
	}

	err := s.engine.Withdraw(req.ParticipantID)
	if err != nil {
		log.Printf("[service] withdraw %s: %v", req.ParticipantID, err)
	}
	s.reply(msg, ackResponse(err))
}

func (s *Service) handleStatus(msg *nats.Msg) {
	var req StatusRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Printf("[service] invalid status request: %v", err)
		return
	}

	info, err := s.engine.Status(req.ParticipantID)
	s.reply(msg, statusResponse(info, err))
}

func (s *Service) handleEndSession(msg *nats.Msg) {
	var req EndSessionRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Printf("[service] invalid end-session request: %v", err)
		return
	}

	err := s.engine.EndSession(s.ctx, req.SessionID)
	if err != nil {
		log.Printf("[service] end session %s: %v", req.SessionID, err)
	}
	s.reply(msg, ackResponse(err))
}

// reply responds to reply-aware requests; fire-and-forget publishes are
// silently accepted.
func (s *Service) reply(msg *nats.Msg, payload interface{}) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[service] marshal reply: %v", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Printf("[service] respond: %v", err)
	}
}

// sweepLoop periodically expires participants that have waited too long.
func (s *Service) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("[service] sweep loop stopped")
			return
		case <-ticker.C:
			if expired := s.engine.ExpireStale(); len(expired) > 0 {
				log.Printf("[service] expired %d stale waiters", len(expired))
			}
		}
	}
}
