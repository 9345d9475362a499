package connectfour

import (
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWin        Status = "win"
	StatusTie        Status = "tie"
)

// Outcome is the state of the game after the last accepted move.
type Outcome struct {
	Status Status `json:"status"`
	Winner Player `json:"winner,omitempty"`
}

func InProgress() Outcome {
	return Outcome{Status: StatusInProgress}
}

func Win(player Player) Outcome {
	return Outcome{Status: StatusWin, Winner: player}
}

func Tie() Outcome {
	return Outcome{Status: StatusTie}
}

func (that Outcome) IsTerminal() bool {
	return that.Status == StatusWin || that.Status == StatusTie
}

// Placement is the cell filled by an accepted drop.
type Placement struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Player Player `json:"player"`
}

// DropResult is reported for every accepted drop.
type DropResult struct {
	Placement Placement `json:"placement"`
	Outcome   Outcome   `json:"outcome"`
}

// Listener receives structured events from an Engine. Calls happen synchronously,
// after the engine state has been committed.
type Listener interface {
	PiecePlaced(result DropResult)
	BoardReset(width, height int)
}

type Option func(*Engine)

// WithPlayers sets the rotation order. Lists shorter than two players, or ones
// containing NoPlayer or duplicates, are ignored.
func WithPlayers(players ...Player) Option {
	return func(e *Engine) {
		if len(players) < 2 {
			return
		}

		seen := make(map[Player]struct{}, len(players))
		for _, p := range players {
			if _, ok := seen[p]; ok || p == NoPlayer {
				return
			}
			seen[p] = struct{}{}
		}

		e.players = append([]Player(nil), players...)
	}
}

func WithListener(listener Listener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, listener)
	}
}

// Engine owns a Connect Four board and the turn state. It is not safe for
// concurrent use.
type Engine struct {
	width  int
	height int

	board      Board
	players    []Player
	turn       int
	outcome    Outcome
	winningRun *Run

	listeners []Listener
}

func NewEngine(width, height int, opts ...Option) *Engine {
	engine := &Engine{
		width:   width,
		height:  height,
		players: []Player{PlayerOne, PlayerTwo},
	}

	for _, opt := range opts {
		opt(engine)
	}

	engine.clear()

	return engine
}

// DropPiece drops the current player's piece into column. The piece lands in the
// lowest empty row. Rejected drops leave the engine untouched.
func (that *Engine) DropPiece(column int) (DropResult, error) {
	if column < 0 || column >= that.width {
		return DropResult{}, fmt.Errorf("%w: column %d", apperror.ErrInvalidColumn, column)
	}

	if that.outcome.IsTerminal() {
		return DropResult{}, apperror.ErrGameOver
	}

	row := that.board.lowestEmptyRow(column)
	if row < 0 {
		return DropResult{}, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, column)
	}

	player := that.CurrentPlayer()
	that.board[row][column] = player

	switch run, won := FindWinningRun(that.board, that.width, that.height, player); {
	case won:
		that.outcome = Win(player)
		that.winningRun = &run
	case that.board.IsFull():
		that.outcome = Tie()
	default:
		that.turn = (that.turn + 1) % len(that.players)
	}

	result := DropResult{
		Placement: Placement{Row: row, Column: column, Player: player},
		Outcome:   that.outcome,
	}

	for _, listener := range that.listeners {
		listener.PiecePlaced(result)
	}

	return result, nil
}

// Reset empties the board and gives the move back to the first player.
func (that *Engine) Reset() {
	that.clear()

	for _, listener := range that.listeners {
		listener.BoardReset(that.width, that.height)
	}
}

func (that *Engine) clear() {
	that.board = NewBoard(that.width, that.height)
	that.turn = 0
	that.outcome = InProgress()
	that.winningRun = nil
}

func (that *Engine) Cell(row, column int) (Player, error) {
	if row < 0 || row >= that.height || column < 0 || column >= that.width {
		return NoPlayer, fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, row, column)
	}

	return that.board[row][column], nil
}

func (that *Engine) CurrentPlayer() Player {
	return that.players[that.turn]
}

func (that *Engine) Outcome() Outcome {
	return that.outcome
}

func (that *Engine) Width() int {
	return that.width
}

func (that *Engine) Height() int {
	return that.height
}

// Board returns a copy of the grid.
func (that *Engine) Board() Board {
	return that.board.Clone()
}

// Moves returns the number of pieces on the board.
func (that *Engine) Moves() int {
	return that.board.Count()
}

// WinningRun returns the run that ended the game, if any.
func (that *Engine) WinningRun() (Run, bool) {
	if that.winningRun == nil {
		return Run{}, false
	}

	return *that.winningRun, true
}
