package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/connectfour"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore[T any] struct {
	mu       sync.Mutex
	items    map[string]T
	notFound error
	key      func(T) string
}

func (that *memoryStore[T]) CreateOrUpdate(_ context.Context, item T) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.items[that.key(item)] = item

	return nil
}

func (that *memoryStore[T]) GetByID(_ context.Context, id string) (T, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	item, ok := that.items[id]
	if !ok {
		return item, that.notFound
	}

	return item, nil
}

func (that *memoryStore[T]) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.items, id)

	return nil
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

const testSessionTTL = 2 * time.Hour

func newTestServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	players := &memoryStore[*entity.Player]{
		items:    map[string]*entity.Player{},
		notFound: apperror.ErrPlayerNotFound,
		key:      func(p *entity.Player) string { return p.ID },
	}
	games := &memoryStore[*entity.Game]{
		items:    map[string]*entity.Game{},
		notFound: apperror.ErrGameNotFound,
		key:      func(g *entity.Game) string { return g.ID },
	}

	manager := usecase.NewGameManager(logger, players, games, entity.DefaultWidth, entity.DefaultHeight)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := httptest.NewServer(New(logger, manager, testSessionTTL, delay, nil).Handler(ctx))
	t.Cleanup(server.Close)

	return server
}

func dial(t *testing.T, server *httptest.Server, header http.Header) (*client, *http.Response) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &client{t: t, conn: conn}, resp
}

func (that *client) send(action string, payload any) {
	that.t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(that.t, err)
	require.NoError(that.t, that.conn.WriteJSON(Message{Action: action, Payload: raw}))
}

func (that *client) receive() (string, ResponsePayload) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(that.t, that.conn.ReadJSON(&msg))

	var payload ResponsePayload
	require.NoError(that.t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

// expectSilence fails if any message arrives within wait.
func (that *client) expectSilence(wait time.Duration) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(wait)))

	var msg Message
	err := that.conn.ReadJSON(&msg)

	var netErr net.Error
	require.True(that.t, errors.As(err, &netErr) && netErr.Timeout(), "unexpected message %q: %v", msg.Action, err)
}

func (that *client) drop(column int) ResponsePayload {
	that.t.Helper()

	that.send(actionDrop, RequestPayload{Column: &column})
	action, payload := that.receive()
	require.Equal(that.t, actionDrop, action)

	return payload
}

func TestServer_Connect(t *testing.T) {
	// Given: a running server
	server := newTestServer(t, 0)

	// When: a browser without a session connects
	c, resp := dial(t, server, nil)
	c.send(actionConnect, nil)
	action, payload := c.receive()

	// Then: a session cookie is issued and a default game is returned
	require.Equal(t, actionConnect, action)
	require.NotNil(t, payload.Player)
	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.DefaultWidth, payload.Game.State.Width)
	assert.Equal(t, payload.Player.GameID, payload.Game.ID)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), sessionCookie+"="+payload.Player.ID)

	// And: the cookie expires together with the stored session
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, int(testSessionTTL.Seconds()), cookies[0].MaxAge)
	assert.WithinDuration(t, time.Now().Add(testSessionTTL), cookies[0].Expires, time.Minute)

	// When: the same session reconnects
	header := http.Header{}
	header.Set("Cookie", sessionCookie+"="+payload.Player.ID)
	again, resp := dial(t, server, header)
	again.send(actionConnect, nil)
	_, reconnected := again.receive()

	// Then: it gets the same game and no new cookie
	assert.Equal(t, payload.Game.ID, reconnected.Game.ID)
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
}

func TestServer_PlayToWin(t *testing.T) {
	// Given: a connected client
	server := newTestServer(t, 50*time.Millisecond)
	c, _ := dial(t, server, nil)
	c.send(actionConnect, nil)
	c.receive()

	// When: the players alternate 0,0,1,1,2,2
	for i, column := range []int{0, 0, 1, 1, 2, 2} {
		payload := c.drop(column)
		require.Empty(t, payload.Error)
		assert.Equal(t, connectfour.StatusInProgress, payload.Outcome.Status, "drop %d", i)
	}

	// And: player one drops into column 3
	payload := c.drop(3)

	// Then: the drop reports the winning placement
	assert.Equal(t, connectfour.Placement{Row: 5, Column: 3, Player: connectfour.PlayerOne}, *payload.Placement)
	assert.Equal(t, connectfour.Win(connectfour.PlayerOne), *payload.Outcome)

	// And: the end of the game is announced after the delay
	action, end := c.receive()
	assert.Equal(t, actionEnd, action)
	assert.Equal(t, "Player 1 won!", end.Message)

	// And: further drops are rejected as game over
	rejected := c.drop(4)
	assert.Equal(t, "game_over", rejected.Kind)
	assert.Nil(t, rejected.Placement)

	// When: the game is reset
	c.send(actionReset, nil)
	action, reset := c.receive()

	// Then: an empty board is returned and play can resume
	assert.Equal(t, actionReset, action)
	assert.True(t, reset.Game.IsOngoing())
	assert.Equal(t, connectfour.PlayerOne, reset.Game.State.Turn)
	assert.Equal(t, connectfour.PlayerOne, c.drop(4).Placement.Player)
}

func TestServer_RejectedDrops(t *testing.T) {
	server := newTestServer(t, 0)
	c, _ := dial(t, server, nil)
	c.send(actionConnect, nil)
	c.receive()

	// out of range column
	assert.Equal(t, "invalid_column", c.drop(7).Kind)

	// full column
	for i := 0; i < entity.DefaultHeight; i++ {
		require.Empty(t, c.drop(0).Error)
	}
	assert.Equal(t, "column_full", c.drop(0).Kind)

	// missing column
	c.send(actionDrop, RequestPayload{})
	_, payload := c.receive()
	assert.Equal(t, "column is required", payload.Error)
}

func TestServer_NewGame(t *testing.T) {
	server := newTestServer(t, 0)
	c, _ := dial(t, server, nil)
	c.send(actionConnect, nil)
	_, connected := c.receive()

	// When: a 5x4 game is requested
	c.send(actionNew, RequestPayload{Width: 5, Height: 4})
	action, payload := c.receive()

	// Then: the game is replaced
	assert.Equal(t, actionNew, action)
	assert.Equal(t, 5, payload.Game.State.Width)
	assert.Equal(t, 4, payload.Game.State.Height)
	assert.NotEqual(t, connected.Game.ID, payload.Game.ID)

	// When: invalid dimensions are requested
	c.send(actionNew, RequestPayload{Width: 0, Height: 40})
	_, rejected := c.receive()

	// Then: the request is rejected
	assert.Equal(t, "invalid_dimensions", rejected.Kind)
}

func TestServer_TieAnnouncement(t *testing.T) {
	server := newTestServer(t, 0)
	c, _ := dial(t, server, nil)
	c.send(actionConnect, nil)
	c.receive()

	columns := []int{
		0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 1,
		2, 2, 2, 2, 2, 2,
		4, 3, 3, 3, 3, 3, 3,
		4, 4, 4, 4, 4,
		5, 5, 5, 5, 5, 5,
		6, 6, 6, 6, 6, 6,
	}

	var last ResponsePayload
	for _, column := range columns {
		last = c.drop(column)
		require.Empty(t, last.Error)
	}

	assert.Equal(t, connectfour.Tie(), *last.Outcome)

	action, end := c.receive()
	assert.Equal(t, actionEnd, action)
	assert.Equal(t, "Tie!", end.Message)
}

func TestServer_ResetCancelsEndAnnouncement(t *testing.T) {
	// Given: a game won with the end announcement still pending
	server := newTestServer(t, 300*time.Millisecond)
	c, _ := dial(t, server, nil)
	c.send(actionConnect, nil)
	c.receive()

	for _, column := range []int{0, 0, 1, 1, 2, 2, 3} {
		require.Empty(t, c.drop(column).Error)
	}

	// When: the game is reset before the delay elapses
	c.send(actionReset, nil)
	action, reset := c.receive()

	// Then: the reset is acknowledged and the stale announcement never arrives
	require.Equal(t, actionReset, action)
	assert.True(t, reset.Game.IsOngoing())
	c.expectSilence(600 * time.Millisecond)
}

func TestSession_CancelledEndIsDropped(t *testing.T) {
	// Given: a session with an end announcement scheduled
	sess := &session{playerID: "player-1"}
	msg := &Message{Action: actionEnd}

	sess.scheduleEnd(time.Hour, msg, func(err error) { t.Errorf("unexpected send error: %v", err) })
	gen := sess.endGen

	// When: the announcement is cancelled after its timer already fired
	sess.cancelEnd()
	sent, err := sess.deliverEnd(gen, msg)

	// Then: the stale message is not written
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Nil(t, sess.endTimer)
}
