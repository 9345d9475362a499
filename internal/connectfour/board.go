package connectfour

// Player identifies the owner of a cell. NoPlayer marks an empty cell.
type Player int

const (
	NoPlayer Player = iota
	PlayerOne
	PlayerTwo
)

// RunLength is the number of aligned pieces needed to win.
const RunLength = 4

// Board is a grid of cells indexed as [row][column], row 0 is the top row.
type Board [][]Player

// Coord addresses a single cell of the board.
type Coord struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Run is a line of RunLength cells anchored at its first coordinate.
type Run [RunLength]Coord

// direction is a (row, column) step used to build runs.
type direction struct {
	dRow, dCol int
}

// horizontal, vertical, diagonal down-right, diagonal down-left
var directions = [...]direction{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

func NewBoard(width, height int) Board {
	board := make(Board, max(height, 0))
	for y := range board {
		board[y] = make([]Player, max(width, 0))
	}

	return board
}

// Clone returns a deep copy of the board.
func (that Board) Clone() Board {
	board := make(Board, len(that))
	for y, row := range that {
		board[y] = append([]Player(nil), row...)
	}

	return board
}

// IsFull reports whether every cell is occupied.
func (that Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == NoPlayer {
				return false
			}
		}
	}

	return true
}

// Count returns the number of occupied cells.
func (that Board) Count() int {
	count := 0
	for _, row := range that {
		for _, cell := range row {
			if cell != NoPlayer {
				count++
			}
		}
	}

	return count
}

// lowestEmptyRow scans the column from the bottom row up and returns the first
// empty row, or -1 when the column is full.
func (that Board) lowestEmptyRow(column int) int {
	for y := len(that) - 1; y >= 0; y-- {
		if that[y][column] == NoPlayer {
			return y
		}
	}

	return -1
}

func runFrom(row, column int, dir direction) Run {
	var run Run
	for i := range run {
		run[i] = Coord{Row: row + i*dir.dRow, Column: column + i*dir.dCol}
	}

	return run
}

// FindWinningRun scans every cell in row-major order and returns the first run of
// RunLength cells owned by player. Coordinates that fall outside the board make a
// run non-winning.
func FindWinningRun(board Board, width, height int, player Player) (Run, bool) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for _, dir := range directions {
				run := runFrom(y, x, dir)
				if ownsRun(board, width, height, player, run) {
					return run, true
				}
			}
		}
	}

	return Run{}, false
}

// CheckForWin reports whether player has RunLength pieces in a row anywhere on the board.
func CheckForWin(board Board, width, height int, player Player) bool {
	_, ok := FindWinningRun(board, width, height, player)
	return ok
}

func ownsRun(board Board, width, height int, player Player, run Run) bool {
	for _, c := range run {
		if c.Row < 0 || c.Row >= height || c.Column < 0 || c.Column >= width {
			return false
		}

		if board[c.Row][c.Column] != player {
			return false
		}
	}

	return true
}
