package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func newTestRouter(t *testing.T) (http.Handler, *mockGameService) {
	t.Helper()

	service := &mockGameService{}
	t.Cleanup(func() { service.AssertExpectations(t) })

	return NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), service), service
}

func TestPingHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestGetGame(t *testing.T) {
	t.Run("Returns the stored game", func(t *testing.T) {
		// Given: a stored game
		router, service := newTestRouter(t)
		game := entity.NewGame("123", "player-1", entity.DefaultWidth, entity.DefaultHeight)
		service.On("GetGame", mock.Anything, "123").Return(game, nil).Once()

		// When: the game is requested
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/123", nil))

		// Then: its snapshot is returned as JSON
		require.Equal(t, http.StatusOK, rec.Code)

		var got entity.Game
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, *game, got)
	})

	t.Run("Unknown game", func(t *testing.T) {
		router, service := newTestRouter(t)
		service.On("GetGame", mock.Anything, "404").Return(nil, apperror.ErrGameNotFound).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/404", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		router, service := newTestRouter(t)
		service.On("GetGame", mock.Anything, "500").Return(nil, errors.New("redis down")).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/500", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
