package ws_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Om-Tiwari/UNOArena/internal/bot"
	"github.com/Om-Tiwari/UNOArena/internal/config"
	"github.com/Om-Tiwari/UNOArena/internal/game"
	"github.com/Om-Tiwari/UNOArena/internal/ws"
)

func wsURLFromHTTP(u string) string {
	return "ws" + strings.TrimPrefix(u, "http")
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestServer wires a transport whose matches run bots on the fallback
// policy: the decision service URL points nowhere and times out fast.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Game.BotTurnDelay = 1
	cfg.Decision.BaseURL = "http://127.0.0.1:9"
	cfg.Decision.TimeoutMS = 50

	log := quietLogger()
	client := bot.NewClient(cfg.Decision.BaseURL, cfg.Decision.Timeout())
	orc := bot.NewOrchestrator(client, log)
	factory := func() *game.Match { return game.NewMatch(cfg, orc, log) }

	srv := httptest.NewServer(ws.NewServer(factory, log))
	t.Cleanup(srv.Close)
	return srv
}

// send writes one command frame.
func send(ctx context.Context, t *testing.T, c *websocket.Conn, msg ws.ClientMessage) {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, c, msg))
}

// awaitAck reads frames until the ack (or error) for cmd arrives, returning
// the acknowledgement. Event frames arriving in between are returned to the
// caller via the collected slice.
func awaitAck(ctx context.Context, t *testing.T, c *websocket.Conn, cmd string) (ws.ServerMessage, []ws.ServerMessage) {
	t.Helper()
	var seen []ws.ServerMessage
	for {
		var msg ws.ServerMessage
		require.NoError(t, wsjson.Read(ctx, c, &msg), "waiting for %s ack", cmd)
		if msg.Cmd == cmd {
			return msg, seen
		}
		seen = append(seen, msg)
	}
}

func TestSession_FullBotMatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv := newTestServer(t)
	c, _, err := websocket.Dial(ctx, wsURLFromHTTP(srv.URL)+"?table=t1", nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "bye")

	send(ctx, t, c, ws.ClientMessage{Type: "join_seat", Seat: 0, Name: "Alice"})
	ack, _ := awaitAck(ctx, t, c, "join_seat")
	require.Equal(t, "ack", ack.Type, "join failed: %s", ack.Error)

	send(ctx, t, c, ws.ClientMessage{Type: "fill_bots", Mode: "mixed"})
	ack, _ = awaitAck(ctx, t, c, "fill_bots")
	require.Equal(t, "ack", ack.Type)

	send(ctx, t, c, ws.ClientMessage{Type: "signal_ready"})
	ack, _ = awaitAck(ctx, t, c, "signal_ready")
	require.Equal(t, "ack", ack.Type)

	send(ctx, t, c, ws.ClientMessage{Type: "start_match"})
	ack, pending := awaitAck(ctx, t, c, "start_match")
	require.Equal(t, "ack", ack.Type)

	// The private opening view arrives, then the bots play themselves out on
	// the fallback policy. This client just draws whenever the turn reaches
	// seat 0, so the bots decide the finishing order among themselves.
	sawInit := false
	done := false
	handle := func(msg ws.ServerMessage) {
		if msg.Type != "event" || msg.Event == nil {
			return
		}
		switch msg.Event.Type {
		case game.EventGameInit:
			require.NotNil(t, msg.Event.View)
			assert.Equal(t, 0, msg.Event.View.Seat, "private init must be ours")
			assert.Len(t, msg.Event.View.Hand, 7)
			sawInit = true
			if msg.Event.View.Current == 0 {
				send(ctx, t, c, ws.ClientMessage{Type: "apply_move", Draw: true})
			}
		case game.EventMove:
			require.NotNil(t, msg.Event.Move)
			if msg.Event.Move.NextActor == 0 {
				// Duplicate sends from the private event copy are rejected
				// as out-of-turn; that error frame is skipped above.
				send(ctx, t, c, ws.ClientMessage{Type: "apply_move", Draw: true})
			}
		case game.EventFinishGame:
			require.NotNil(t, msg.Event.Finish)
			assert.Len(t, msg.Event.Finish.OrderedSeats, 4)
			assert.True(t, sawInit, "game_init must precede finish")
			done = true
		}
	}

	for _, msg := range pending {
		handle(msg)
	}
	for !done {
		var msg ws.ServerMessage
		require.NoError(t, wsjson.Read(ctx, c, &msg))
		handle(msg)
	}
}

func TestSession_CommandValidation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := newTestServer(t)
	c, _, err := websocket.Dial(ctx, wsURLFromHTTP(srv.URL)+"?table=t2", nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "bye")

	// Moving without a seat is rejected.
	send(ctx, t, c, ws.ClientMessage{Type: "apply_move", Draw: true})
	ack, _ := awaitAck(ctx, t, c, "apply_move")
	assert.Equal(t, "error", ack.Type)

	// Unknown commands are rejected.
	send(ctx, t, c, ws.ClientMessage{Type: "shuffle"})
	ack, _ = awaitAck(ctx, t, c, "shuffle")
	assert.Equal(t, "error", ack.Type)

	// Duplicate seat claims are rejected.
	send(ctx, t, c, ws.ClientMessage{Type: "join_seat", Seat: 2, Name: "Alice"})
	ack, _ = awaitAck(ctx, t, c, "join_seat")
	require.Equal(t, "ack", ack.Type)

	c2, _, err := websocket.Dial(ctx, wsURLFromHTTP(srv.URL)+"?table=t2", nil)
	require.NoError(t, err)
	defer c2.Close(websocket.StatusNormalClosure, "bye")

	send(ctx, t, c2, ws.ClientMessage{Type: "join_seat", Seat: 2, Name: "Bob"})
	ack, _ = awaitAck(ctx, t, c2, "join_seat")
	assert.Equal(t, "error", ack.Type)
}

func TestSession_TablesAreIsolated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := newTestServer(t)

	c1, _, err := websocket.Dial(ctx, wsURLFromHTTP(srv.URL)+"?table=a", nil)
	require.NoError(t, err)
	defer c1.Close(websocket.StatusNormalClosure, "bye")

	c2, _, err := websocket.Dial(ctx, wsURLFromHTTP(srv.URL)+"?table=b", nil)
	require.NoError(t, err)
	defer c2.Close(websocket.StatusNormalClosure, "bye")

	// The same seat index is free on both tables.
	send(ctx, t, c1, ws.ClientMessage{Type: "join_seat", Seat: 0, Name: "Alice"})
	ack, _ := awaitAck(ctx, t, c1, "join_seat")
	require.Equal(t, "ack", ack.Type)

	send(ctx, t, c2, ws.ClientMessage{Type: "join_seat", Seat: 0, Name: "Bob"})
	ack, _ = awaitAck(ctx, t, c2, "join_seat")
	assert.Equal(t, "ack", ack.Type)
}
