package entity

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
)

const (
	DefaultWidth  = 7
	DefaultHeight = 6

	MinDimension = 1
	MaxDimension = 20
)

// Game is the stored form of a Connect Four game owned by a session.
type Game struct {
	ID      string               `json:"id"`
	OwnerID string               `json:"owner_id"`
	State   connectfour.Snapshot `json:"state"`
}

func NewGame(id, ownerID string, width, height int) *Game {
	return &Game{
		ID:      id,
		OwnerID: ownerID,
		State:   connectfour.NewEngine(width, height).Snapshot(),
	}
}

// Engine restores a playable engine from the stored state.
func (that *Game) Engine(opts ...connectfour.Option) (*connectfour.Engine, error) {
	engine, err := connectfour.Restore(that.State, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game %s: %w", that.ID, err)
	}

	return engine, nil
}

// Update stores the engine state back into the game.
func (that *Game) Update(engine *connectfour.Engine) {
	that.State = engine.Snapshot()
}

func (that *Game) IsFinished() bool {
	return that.State.Outcome.IsTerminal()
}

func (that *Game) IsOngoing() bool {
	return that.State.Outcome.Status == connectfour.StatusInProgress
}

// ResultMessage is the text announced when the game ends, empty while it is running.
func (that *Game) ResultMessage() string {
	switch that.State.Outcome.Status {
	case connectfour.StatusWin:
		return fmt.Sprintf("Player %d won!", that.State.Outcome.Winner)
	case connectfour.StatusTie:
		return "Tie!"
	default:
		return ""
	}
}

// ValidDimensions reports whether a board of width x height can be created.
func ValidDimensions(width, height int) bool {
	return width >= MinDimension && width <= MaxDimension &&
		height >= MinDimension && height <= MaxDimension
}
