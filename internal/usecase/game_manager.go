package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/pkg"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager runs one hot-seat game per session on top of the stored snapshots.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo

	width  int
	height int

	locks *sessionLocks
}

// NewGameManager creates a manager whose new games default to width x height.
func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, width, height int) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		width:  width,
		height: height,

		locks: newSessionLocks(),
	}
}

// GetOrCreatePlayer returns the session player. An empty id creates a new session,
// an unknown or expired one is recreated under the same id.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = pkg.GenerateNewSessionID()
	} else {
		player, err := that.playerRepo.GetByID(ctx, id)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, apperror.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}
	}

	player := &entity.Player{ID: id}
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game, starting a default one if the
// player has none or it has expired.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	unlock := that.locks.lock(playerID)
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.HasGame() {
		game, err := that.gameRepo.GetByID(ctx, player.GameID)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, apperror.ErrGameNotFound) {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}
	}

	return that.createGame(ctx, player, that.width, that.height)
}

// NewGame replaces the player's game with a fresh width x height board.
func (that *GameManager) NewGame(ctx context.Context, playerID string, width, height int) (*entity.Game, error) {
	if !entity.ValidDimensions(width, height) {
		return nil, fmt.Errorf("%w: %dx%d", apperror.ErrInvalidDimensions, width, height)
	}

	unlock := that.locks.lock(playerID)
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.HasGame() {
		that.deleteGame(ctx, player.GameID)
	}

	return that.createGame(ctx, player, width, height)
}

// DropPiece plays column for whoever is to move in the player's game. Rejected
// drops return the unchanged game together with the engine error.
func (that *GameManager) DropPiece(ctx context.Context, playerID string, column int) (*entity.Game, connectfour.DropResult, error) {
	unlock := that.locks.lock(playerID)
	defer unlock()

	game, err := that.getPlayerGame(ctx, playerID)
	if err != nil {
		return nil, connectfour.DropResult{}, err
	}

	engine, err := game.Engine(connectfour.WithListener(that.events(game)))
	if err != nil {
		return nil, connectfour.DropResult{}, err
	}

	result, err := engine.DropPiece(column)
	if err != nil {
		return game, connectfour.DropResult{}, fmt.Errorf("failed to drop piece: %w", err)
	}

	game.Update(engine)
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, connectfour.DropResult{}, fmt.Errorf("failed to update game: %w", err)
	}

	return game, result, nil
}

// ResetGame empties the board of the player's game.
func (that *GameManager) ResetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	unlock := that.locks.lock(playerID)
	defer unlock()

	game, err := that.getPlayerGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	engine, err := game.Engine(connectfour.WithListener(that.events(game)))
	if err != nil {
		return nil, err
	}

	engine.Reset()
	game.Update(engine)

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player, width, height int) (*entity.Game, error) {
	game := entity.NewGame(pkg.GenerateGameID(), player.ID, width, height)
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	player.GameID = game.ID
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "playerID", player.ID, "width", width, "height", height)

	return game, nil
}

func (that *GameManager) getPlayerGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if !player.HasGame() {
		return nil, fmt.Errorf("%w: player %s has no game", apperror.ErrGameNotFound, playerID)
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) deleteGame(ctx context.Context, gameID string) {
	log := that.logger.With("method", "deleteGame", "gameID", gameID)

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
		return
	}

	log.Info("game deleted")
}
