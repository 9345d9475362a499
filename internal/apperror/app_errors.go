package apperror

import "errors"

var (
	ErrInvalidColumn     = errors.New("invalid column index")
	ErrColumnFull        = errors.New("column is full")
	ErrGameOver          = errors.New("game is already over")
	ErrInvalidCell       = errors.New("invalid cell coordinates")
	ErrInvalidDimensions = errors.New("invalid board dimensions")
	ErrInvalidSnapshot   = errors.New("invalid game snapshot")
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotFound    = errors.New("player not found")
)
