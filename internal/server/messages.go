package server

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/zeusync/orbwalk/internal/core/locomotion"
	"github.com/zeusync/orbwalk/internal/core/session"
	"github.com/zeusync/orbwalk/internal/world"
)

// Client message types.
const (
	MessageInput    = "input"
	MessageTravel   = "travel"
	MessageDialogue = "dialogue"
)

// Server message types.
const (
	MessageHello = "hello"
	MessageFrame = "frame"
	MessageError = "error"
)

// ClientMessage is what a viewer sends over the websocket.
type ClientMessage struct {
	Type   string            `json:"type"`
	Input  *locomotion.Input `json:"input,omitempty"`
	Target string            `json:"target,omitempty"`
	Open   *bool             `json:"open,omitempty"`
}

// ServerMessage is pushed to viewers. Frames carry the session snapshot taken
// right after the tick.
type ServerMessage struct {
	Type     string            `json:"type"`
	ClientID string            `json:"client_id,omitempty"`
	Frame    *world.Frame      `json:"frame,omitempty"`
	Session  *session.Snapshot `json:"session,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func decodeClientMessage(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, errors.Wrap(ErrInvalidMessage, err.Error())
	}
	switch msg.Type {
	case MessageInput:
		if msg.Input == nil {
			return msg, errors.Wrap(ErrInvalidMessage, "input message without input")
		}
	case MessageTravel:
		if msg.Target == "" {
			return msg, errors.Wrap(ErrInvalidMessage, "travel message without target")
		}
	case MessageDialogue:
		if msg.Open == nil {
			return msg, errors.Wrap(ErrInvalidMessage, "dialogue message without open flag")
		}
	default:
		return msg, errors.Wrapf(ErrInvalidMessage, "unknown type %q", msg.Type)
	}
	return msg, nil
}
