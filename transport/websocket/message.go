package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	actionConnect = "connect"
	actionNew     = "game:new"
	actionDrop    = "game:drop"
	actionReset   = "game:reset"
	actionEnd     = "game:end"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RequestPayload is what clients send. Fields are read per action.
type RequestPayload struct {
	Column *int `json:"column,omitempty"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

type ResponsePayload struct {
	Player    *entity.Player         `json:"player,omitempty"`
	Game      *entity.Game           `json:"game,omitempty"`
	Placement *connectfour.Placement `json:"placement,omitempty"`
	Outcome   *connectfour.Outcome   `json:"outcome,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Kind      string                 `json:"kind,omitempty"`
}

func newMessage(action string, payload ResponsePayload) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return &Message{Action: action, Payload: raw}, nil
}

// errorKind maps rejected moves to the kinds clients are expected to ignore.
func errorKind(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidColumn):
		return "invalid_column"
	case errors.Is(err, apperror.ErrColumnFull):
		return "column_full"
	case errors.Is(err, apperror.ErrGameOver):
		return "game_over"
	case errors.Is(err, apperror.ErrInvalidDimensions):
		return "invalid_dimensions"
	case errors.Is(err, apperror.ErrGameNotFound):
		return "game_not_found"
	default:
		return "internal"
	}
}
