package websocket

import "github.com/stemsi/paxcalc-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionConvert Action = "convert"
	ActionPing    Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ConvertRequest asks for a live conversion. Seq is echoed back so a client
// typing quickly can drop results for inputs it has already replaced.
type ConvertRequest struct {
	Action Action `json:"action"`
	Seq    int64  `json:"seq,omitempty"`
	model.CalculateRequest
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventResult Event = "result"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

type ResultResponse struct {
	Event  Event              `json:"event"`
	Seq    int64              `json:"seq,omitempty"`
	Result *model.Calculation `json:"result"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Seq    int64             `json:"seq,omitempty"`
	Code   string            `json:"code,omitempty"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
