package service

import (
	"errors"

	"github.com/driftchat/matchd/internal/matchmaker"
	"github.com/driftchat/matchd/internal/registry"
)

// Error codes surfaced to callers.
const (
	CodeInvalidInput     = "invalid_input"
	CodeConflict         = "conflict"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// SubmitRequest asks the engine to match a participant.
type SubmitRequest struct {
	ParticipantID string   `json:"participant_id"`
	Interests     []string `json:"interests"`
}

// SubmitResponse reports either a committed match or a queue placement.
// Warning is set when the match stands but its persistence failed.
type SubmitResponse struct {
	Matched              bool     `json:"matched"`
	SessionID            string   `json:"session_id,omitempty"`
	PartnerID            string   `json:"partner_id,omitempty"`
	Score                float64  `json:"score,omitempty"`
	SharedInterests      []string `json:"shared_interests,omitempty"`
	QueuePosition        int      `json:"queue_position,omitempty"`
	QueueLength          int      `json:"queue_length,omitempty"`
	EstimatedWaitSeconds int      `json:"estimated_wait_seconds,omitempty"`
	Warning              string   `json:"warning,omitempty"`
	Error                string   `json:"error,omitempty"`
}

// WithdrawRequest removes a waiting participant.
type WithdrawRequest struct {
	ParticipantID string `json:"participant_id"`
}

// StatusRequest queries a participant's lifecycle position.
type StatusRequest struct {
	ParticipantID string `json:"participant_id"`
}

// StatusResponse reports the participant's state.
type StatusResponse struct {
	State         string `json:"state,omitempty"`
	QueuePosition int    `json:"queue_position,omitempty"`
	QueueLength   int    `json:"queue_length,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	PartnerID     string `json:"partner_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// EndSessionRequest ends a chat session, releasing both participants.
type EndSessionRequest struct {
	SessionID string `json:"session_id"`
}

// AckResponse acknowledges withdraw and end-session requests.
type AckResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// errorCode maps engine errors onto the wire taxonomy.
func errorCode(err error) string {
	switch {
	case errors.Is(err, registry.ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, registry.ErrConflict):
		return CodeConflict
	case errors.Is(err, registry.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, matchmaker.ErrStoreUnavailable):
		return CodeStoreUnavailable
	}
	return CodeInternal
}

// submitResponse builds the wire response for a Submit outcome. A store
// failure after a committed match becomes a warning on an otherwise
// successful response: the pairing stands.
func submitResponse(result *matchmaker.Result, err error) SubmitResponse {
	if err != nil && result == nil {
		return SubmitResponse{Error: errorCode(err)}
	}

	resp := SubmitResponse{
		Matched:              result.Matched,
		SessionID:            result.SessionID,
		PartnerID:            result.PartnerID,
		Score:                result.Score,
		SharedInterests:      result.SharedInterests,
		QueuePosition:        result.QueuePosition,
		QueueLength:          result.QueueLength,
		EstimatedWaitSeconds: int(result.EstimatedWait.Seconds()),
	}
	if err != nil {
		resp.Warning = errorCode(err)
	}
	return resp
}

func statusResponse(info *matchmaker.StatusInfo, err error) StatusResponse {
	if err != nil {
		return StatusResponse{Error: errorCode(err)}
	}
	return StatusResponse{
		State:         string(info.State),
		QueuePosition: info.QueuePosition,
		QueueLength:   info.QueueLength,
		SessionID:     info.SessionID,
		PartnerID:     info.PartnerID,
	}
}

func ackResponse(err error) AckResponse {
	if err != nil {
		return AckResponse{Error: errorCode(err)}
	}
	return AckResponse{OK: true}
}
