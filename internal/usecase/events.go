package usecase

import (
	"log/slog"

	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// gameEvents logs the engine events of one game.
type gameEvents struct {
	logger *slog.Logger
}

func (that *GameManager) events(game *entity.Game) *gameEvents {
	return &gameEvents{
		logger: that.logger.With("gameID", game.ID, "playerID", game.OwnerID),
	}
}

func (that *gameEvents) PiecePlaced(result connectfour.DropResult) {
	that.logger.Debug("piece placed",
		"row", result.Placement.Row,
		"column", result.Placement.Column,
		"player", result.Placement.Player,
	)

	if result.Outcome.IsTerminal() {
		that.logger.Info("game finished", "status", result.Outcome.Status, "winner", result.Outcome.Winner)
	}
}

func (that *gameEvents) BoardReset(width, height int) {
	that.logger.Info("board reset", "width", width, "height", height)
}
