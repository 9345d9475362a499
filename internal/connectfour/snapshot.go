package connectfour

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

// Snapshot is the serialisable state of an Engine.
type Snapshot struct {
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Board      Board    `json:"board"`
	Players    []Player `json:"players"`
	Turn       Player   `json:"turn"`
	Outcome    Outcome  `json:"outcome"`
	WinningRun []Coord  `json:"winning_run,omitempty"`
}

func (that *Engine) Snapshot() Snapshot {
	snapshot := Snapshot{
		Width:   that.width,
		Height:  that.height,
		Board:   that.board.Clone(),
		Players: append([]Player(nil), that.players...),
		Turn:    that.CurrentPlayer(),
		Outcome: that.outcome,
	}

	if that.winningRun != nil {
		snapshot.WinningRun = append([]Coord(nil), that.winningRun[:]...)
	}

	return snapshot
}

// Restore rebuilds an engine from a snapshot after checking that the snapshot
// describes a reachable position: pieces rest on each other, piece counts follow
// the rotation and the outcome matches the board.
func Restore(snapshot Snapshot, opts ...Option) (*Engine, error) {
	if err := snapshot.validate(); err != nil {
		return nil, err
	}

	engine := NewEngine(snapshot.Width, snapshot.Height, append([]Option{WithPlayers(snapshot.Players...)}, opts...)...)
	engine.board = snapshot.Board.Clone()
	engine.turn = slices.Index(engine.players, snapshot.Turn)
	if engine.turn < 0 {
		return nil, fmt.Errorf("%w: player %d is not in the rotation", apperror.ErrInvalidSnapshot, snapshot.Turn)
	}
	engine.outcome = snapshot.Outcome

	if snapshot.Outcome.Status == StatusWin {
		run, _ := FindWinningRun(engine.board, engine.width, engine.height, snapshot.Outcome.Winner)
		engine.winningRun = &run
	}

	return engine, nil
}

func (that Snapshot) validate() error {
	if that.Width < 1 || that.Height < 1 {
		return fmt.Errorf("%w: %dx%d", apperror.ErrInvalidDimensions, that.Width, that.Height)
	}

	if len(that.Players) < 2 {
		return fmt.Errorf("%w: at least two players required", apperror.ErrInvalidSnapshot)
	}

	seen := make(map[Player]struct{}, len(that.Players))
	for _, p := range that.Players {
		if _, ok := seen[p]; ok || p == NoPlayer {
			return fmt.Errorf("%w: bad player list %v", apperror.ErrInvalidSnapshot, that.Players)
		}
		seen[p] = struct{}{}
	}

	if !slices.Contains(that.Players, that.Turn) {
		return fmt.Errorf("%w: unknown player %d to move", apperror.ErrInvalidSnapshot, that.Turn)
	}

	if len(that.Board) != that.Height {
		return fmt.Errorf("%w: board has %d rows, want %d", apperror.ErrInvalidSnapshot, len(that.Board), that.Height)
	}

	for y, row := range that.Board {
		if len(row) != that.Width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", apperror.ErrInvalidSnapshot, y, len(row), that.Width)
		}
	}

	for y, row := range that.Board {
		for x, cell := range row {
			if cell != NoPlayer && !slices.Contains(that.Players, cell) {
				return fmt.Errorf("%w: unknown player %d at (%d, %d)", apperror.ErrInvalidSnapshot, cell, y, x)
			}

			// pieces never float above an empty cell
			if cell != NoPlayer && y+1 < that.Height && that.Board[y+1][x] == NoPlayer {
				return fmt.Errorf("%w: floating piece at (%d, %d)", apperror.ErrInvalidSnapshot, y, x)
			}
		}
	}

	if err := that.validateOutcome(); err != nil {
		return err
	}

	return that.validateTurn()
}

func (that Snapshot) validateOutcome() error {
	switch that.Outcome.Status {
	case StatusInProgress:
		for _, p := range that.Players {
			if CheckForWin(that.Board, that.Width, that.Height, p) {
				return fmt.Errorf("%w: player %d has a winning run in an unfinished game", apperror.ErrInvalidSnapshot, p)
			}
		}

		if that.Board.IsFull() {
			return fmt.Errorf("%w: full board in an unfinished game", apperror.ErrInvalidSnapshot)
		}
	case StatusWin:
		if !CheckForWin(that.Board, that.Width, that.Height, that.Outcome.Winner) {
			return fmt.Errorf("%w: winner %d has no winning run", apperror.ErrInvalidSnapshot, that.Outcome.Winner)
		}

		// the game stops on the winning move, so the winner is still to move
		if that.Turn != that.Outcome.Winner {
			return fmt.Errorf("%w: player %d to move after player %d won", apperror.ErrInvalidSnapshot, that.Turn, that.Outcome.Winner)
		}

		for _, p := range that.Players {
			if p != that.Outcome.Winner && CheckForWin(that.Board, that.Width, that.Height, p) {
				return fmt.Errorf("%w: players %d and %d both have a winning run", apperror.ErrInvalidSnapshot, that.Outcome.Winner, p)
			}
		}
	case StatusTie:
		if !that.Board.IsFull() {
			return fmt.Errorf("%w: tie on a board with empty cells", apperror.ErrInvalidSnapshot)
		}

		for _, p := range that.Players {
			if CheckForWin(that.Board, that.Width, that.Height, p) {
				return fmt.Errorf("%w: tie with a winning run for player %d", apperror.ErrInvalidSnapshot, p)
			}
		}
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrInvalidSnapshot, that.Outcome.Status)
	}

	return nil
}

// validateTurn checks the piece counts against the rotation. Players take turns in
// order, so after m moves the first m%n players have one piece more than the rest.
// A finished game keeps the last mover as the player to move.
func (that Snapshot) validateTurn() error {
	counts := make(map[Player]int, len(that.Players))
	for _, row := range that.Board {
		for _, cell := range row {
			if cell != NoPlayer {
				counts[cell]++
			}
		}
	}

	moves, n := that.Board.Count(), len(that.Players)
	for i, p := range that.Players {
		want := moves / n
		if i < moves%n {
			want++
		}

		if counts[p] != want {
			return fmt.Errorf("%w: player %d has %d pieces, want %d", apperror.ErrInvalidSnapshot, p, counts[p], want)
		}
	}

	next := moves % n
	if that.Outcome.IsTerminal() {
		next = (moves - 1 + n) % n
	}

	if that.Turn != that.Players[next] {
		return fmt.Errorf("%w: player %d to move, want %d", apperror.ErrInvalidSnapshot, that.Turn, that.Players[next])
	}

	return nil
}
