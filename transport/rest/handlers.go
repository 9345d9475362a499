package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type gameService interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type handlers struct {
	logger      *slog.Logger
	gameService gameService
}

func newHandlers(logger *slog.Logger, gameService gameService) *handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		gameService: gameService,
	}
}

// GetGame - returns the stored snapshot of a game as JSON.
func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	gameID := r.PathValue("id")

	game, err := that.gameService.GetGame(r.Context(), gameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}

	if err != nil {
		log.Error("failed to get game", "gameID", gameID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
