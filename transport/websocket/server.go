package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const sessionCookie = "user_session"

type uGame interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	NewGame(ctx context.Context, playerID string, width, height int) (*entity.Game, error)
	DropPiece(ctx context.Context, playerID string, column int) (*entity.Game, connectfour.DropResult, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, sess *session, msg *Message) error

type Server struct {
	logger *slog.Logger
	uGame  uGame

	sessionTTL   time.Duration
	endGameDelay time.Duration
	upgrader     websocket.Upgrader

	handlers map[string]handlerFunc
}

// New creates the presentation server. Session cookies live as long as the stored
// session (sessionTTL). endGameDelay postpones the game:end announcement so the
// client can render the last piece first. An empty allowedOrigins list accepts any
// origin.
func New(logger *slog.Logger, uGame uGame, sessionTTL, endGameDelay time.Duration, allowedOrigins []string) *Server {
	server := &Server{
		logger:       logger.With("component", "websocket"),
		uGame:        uGame,
		sessionTTL:   sessionTTL,
		endGameDelay: endGameDelay,

		handlers: make(map[string]handlerFunc),
	}

	server.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionNew] = server.handleNewGame
	server.handlers[actionDrop] = server.handleDrop
	server.handlers[actionReset] = server.handleReset

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and shuts it down when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - resolves the session cookie and upgrades the connection.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	var sessionID string
	if cookie, err := req.Cookie(sessionCookie); err == nil {
		sessionID = cookie.Value
	}

	player, err := that.uGame.GetOrCreatePlayer(ctx, sessionID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		http.Error(writer, "failed to create session", http.StatusInternalServerError)
		return
	}

	header := http.Header{}
	if player.ID != sessionID {
		cookie := &http.Cookie{
			Name:     sessionCookie,
			Value:    player.ID,
			Expires:  time.Now().Add(that.sessionTTL),
			MaxAge:   int(that.sessionTTL.Seconds()),
			Path:     "/ws",
			HttpOnly: true,
		}
		header.Add("Set-Cookie", cookie.String())
		log.Info("session cookie not found, new one created", "cookie", player.ID)
	}

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sess := &session{playerID: player.ID, conn: conn}
	defer sess.close()

	log.Info("WebSocket connection established", "playerID", player.ID)

	if err = that.handleMessages(ctx, sess); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, sess *session) error {
	log := that.logger.With("method", "handleMessages", "playerID", sess.playerID)

	for {
		var message Message
		if err := sess.conn.ReadJSON(&message); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("client disconnected")
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err := handler(ctx, sess, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// session is one browser connection. Writes come from the read loop and from the
// end-of-game timer, so they are serialised.
type session struct {
	playerID string
	conn     *websocket.Conn

	mu       sync.Mutex
	endTimer *time.Timer
	// endGen changes whenever a pending announcement is replaced or cancelled.
	endGen uint64
	closed bool
}

func (that *session) send(msg *Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.write(msg)
}

func (that *session) write(msg *Message) error {
	if that.closed {
		return websocket.ErrCloseSent
	}

	if err := that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// scheduleEnd sends msg after delay unless cancelled by a reset, a new game or a
// disconnect.
func (that *session) scheduleEnd(delay time.Duration, msg *Message, onError func(error)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	gen := that.stopEnd()
	that.endTimer = time.AfterFunc(delay, func() {
		if _, err := that.deliverEnd(gen, msg); err != nil {
			onError(err)
		}
	})
}

// deliverEnd writes msg if no reset or new game happened since it was scheduled.
// Timer.Stop cannot recall a callback that has already fired, so the check runs
// under the write lock.
func (that *session) deliverEnd(gen uint64, msg *Message) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if gen != that.endGen || that.closed {
		return false, nil
	}

	that.endTimer = nil

	return true, that.write(msg)
}

func (that *session) cancelEnd() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopEnd()
}

// stopEnd must be called with mu held.
func (that *session) stopEnd() uint64 {
	if that.endTimer != nil {
		that.endTimer.Stop()
		that.endTimer = nil
	}

	that.endGen++

	return that.endGen
}

func (that *session) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopEnd()

	that.closed = true
	_ = that.conn.Close()
}
