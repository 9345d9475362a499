package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleConnect", "playerID", sess.playerID)

	player, err := that.uGame.GetOrCreatePlayer(ctx, sess.playerID)
	if err != nil {
		log.Error("failed to get player", "error", err)
		return that.sendErrorResponse(sess, msg.Action, "failed to load session", err)
	}

	game, err := that.uGame.GetOrCreateGame(ctx, sess.playerID)
	if err != nil {
		log.Error("failed to get or create game", "error", err)
		return that.sendErrorResponse(sess, msg.Action, "failed to load game", err)
	}

	if err = that.sendMessage(sess, msg.Action, ResponsePayload{Player: player, Game: game}); err != nil {
		return err
	}

	// finished on a previous connection: announce right away
	if game.IsFinished() {
		that.announceEnd(sess, game, 0)
	}

	log.Info("successfully connected player", "gameID", game.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleNewGame", "playerID", sess.playerID)

	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, "invalid payload", err)
	}

	width, height := payload.Width, payload.Height
	if width == 0 && height == 0 {
		width, height = entity.DefaultWidth, entity.DefaultHeight
	}

	sess.cancelEnd()

	game, err := that.uGame.NewGame(ctx, sess.playerID, width, height)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendErrorResponse(sess, msg.Action, "failed to create a new game", err)
	}

	log.Info("new game started", "gameID", game.ID)

	return that.sendMessage(sess, msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleDrop(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleDrop", "playerID", sess.playerID)

	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(sess, msg.Action, "invalid payload", err)
	}

	if payload.Column == nil {
		log.Error("column is missing in payload")
		return that.sendErrorResponse(sess, msg.Action, "column is required", nil)
	}

	game, result, err := that.uGame.DropPiece(ctx, sess.playerID, *payload.Column)
	if err != nil {
		// rejected moves are expected input, the client ignores them
		log.Debug("drop rejected", "column", *payload.Column, "error", err)
		return that.sendErrorResponse(sess, msg.Action, err.Error(), err)
	}

	if err = that.sendMessage(sess, msg.Action, ResponsePayload{
		Game:      game,
		Placement: &result.Placement,
		Outcome:   &result.Outcome,
	}); err != nil {
		return err
	}

	if result.Outcome.IsTerminal() {
		that.announceEnd(sess, game, that.endGameDelay)
	}

	return nil
}

func (that *Server) handleReset(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleReset", "playerID", sess.playerID)

	sess.cancelEnd()

	game, err := that.uGame.ResetGame(ctx, sess.playerID)
	if err != nil {
		log.Error("failed to reset game", "error", err)
		return that.sendErrorResponse(sess, msg.Action, "failed to reset game", err)
	}

	log.Info("game reset", "gameID", game.ID)

	return that.sendMessage(sess, msg.Action, ResponsePayload{Game: game})
}

// announceEnd pushes the terminal message once the delay has elapsed.
func (that *Server) announceEnd(sess *session, game *entity.Game, delay time.Duration) {
	log := that.logger.With("method", "announceEnd", "playerID", sess.playerID, "gameID", game.ID)

	outcome := game.State.Outcome
	message, err := newMessage(actionEnd, ResponsePayload{Outcome: &outcome, Message: game.ResultMessage()})
	if err != nil {
		log.Error("failed to build end message", "error", err)
		return
	}

	sess.scheduleEnd(delay, message, func(err error) {
		log.Error("failed to send end message", "error", err)
	})
}

func (that *Server) sendMessage(sess *session, action string, payload ResponsePayload) error {
	message, err := newMessage(action, payload)
	if err != nil {
		return err
	}

	if err = sess.send(message); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(sess *session, action, errorMsg string, cause error) error {
	payload := ResponsePayload{Error: errorMsg}
	if cause != nil {
		payload.Kind = errorKind(cause)
	}

	if err := that.sendMessage(sess, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
