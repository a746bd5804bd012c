// Package ws is the WebSocket transport: it upgrades connections, routes
// client commands into a match, and relays match events back out, filtering
// seat-private events to the owning connection.
package ws

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Om-Tiwari/UNOArena/internal/game"
)

// MatchFactory builds a fresh match for a table key.
type MatchFactory func() *game.Match

// Server upgrades HTTP requests to WebSocket sessions. Tables are addressed
// by the `table` query parameter; connections without one share the default
// table.
type Server struct {
	log     logrus.FieldLogger
	factory MatchFactory

	mu      sync.Mutex
	matches map[string]*game.Match
}

// NewServer builds a transport around the given match factory.
func NewServer(factory MatchFactory, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		log:     log,
		factory: factory,
		matches: make(map[string]*game.Match),
	}
}

// matchFor returns the match behind a table key, creating it on first use.
func (s *Server) matchFor(key string) *game.Match {
	if key == "" {
		key = "default"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[key]
	if !ok {
		m = s.factory()
		s.matches[key] = m
		s.log.WithField("table", key).Info("table created")
	}
	return m
}

// ClientMessage is one inbound command frame.
type ClientMessage struct {
	Type   string `json:"type"` // join_seat, fill_bots, signal_ready, start_match, apply_move, reset
	Seat   int    `json:"seat"`
	Name   string `json:"name,omitempty"`
	Mode   string `json:"mode,omitempty"`   // fill_bots provider mode
	Draw   bool   `json:"draw,omitempty"`   // apply_move: bare draw
	CardID string `json:"cardId,omitempty"` // apply_move: card to play
	Color  string `json:"color,omitempty"`  // apply_move: declared wild color
}

// ServerMessage is one outbound frame: either a relayed match event or a
// command acknowledgement.
type ServerMessage struct {
	Type  string          `json:"type"` // "event", "ack", "error"
	Cmd   string          `json:"cmd,omitempty"`
	Error string          `json:"error,omitempty"`
	Event *game.Event     `json:"event,omitempty"`
	View  *game.TableView `json:"view,omitempty"`
}

// outboxSize bounds per-connection event buffering; a client that cannot
// keep up loses events rather than stalling the match.
const outboxSize = 64

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	m := s.matchFor(r.URL.Query().Get("table"))
	s.serveConn(r.Context(), conn, m)
}

func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn, m *game.Match) {
	connID := uuid.New()
	log := s.log.WithField("conn", connID)

	// The seat this connection owns; -1 until join_seat succeeds. Read by
	// the event filter, written by the command loop.
	var seat atomic.Int32
	seat.Store(-1)

	out := make(chan game.Event, outboxSize)
	cancel := m.Subscribe(func(ev game.Event) {
		if ev.TargetSeat != game.BroadcastSeat && ev.TargetSeat != int(seat.Load()) {
			return
		}
		select {
		case out <- ev:
		default:
			log.Warn("event dropped, client too slow")
		}
	})
	defer cancel()

	writeCtx, stopWriter := context.WithCancel(ctx)
	defer stopWriter()
	go func() {
		for {
			select {
			case ev := <-out:
				if err := wsjson.Write(writeCtx, conn, ServerMessage{Type: "event", Event: &ev}); err != nil {
					return
				}
			case <-writeCtx.Done():
				return
			}
		}
	}()

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			log.WithError(err).Debug("connection closed")
			return
		}
		s.dispatch(ctx, conn, m, connID, &seat, msg, log)
	}
}

func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, m *game.Match, connID uuid.UUID, seat *atomic.Int32, msg ClientMessage, log logrus.FieldLogger) {
	reply := func(sm ServerMessage) {
		sm.Cmd = msg.Type
		if err := wsjson.Write(ctx, conn, sm); err != nil {
			log.WithError(err).Debug("reply failed")
		}
	}
	fail := func(err error) {
		reply(ServerMessage{Type: "error", Error: err.Error()})
	}

	switch msg.Type {
	case "join_seat":
		if msg.Seat < 0 || msg.Seat > 255 {
			fail(errSeatRange)
			return
		}
		if err := m.JoinSeat(uint8(msg.Seat), msg.Name, uuid.New(), connID); err != nil {
			fail(err)
			return
		}
		seat.Store(int32(msg.Seat))
		reply(ServerMessage{Type: "ack"})

	case "fill_bots":
		if err := m.FillRemainingWithBots(msg.Mode); err != nil {
			fail(err)
			return
		}
		reply(ServerMessage{Type: "ack"})

	case "signal_ready":
		if err := m.SignalReady(uint8(seat.Load())); err != nil {
			fail(err)
			return
		}
		reply(ServerMessage{Type: "ack"})

	case "start_match":
		if err := m.StartMatch(); err != nil {
			fail(err)
			return
		}
		reply(ServerMessage{Type: "ack"})

	case "apply_move":
		own := seat.Load()
		if own < 0 {
			fail(errNoSeat)
			return
		}
		var cardID uuid.UUID
		if !msg.Draw {
			id, err := uuid.Parse(msg.CardID)
			if err != nil {
				fail(err)
				return
			}
			cardID = id
		}
		if err := m.ApplyMove(uint8(own), msg.Draw, cardID, msg.Color); err != nil {
			fail(err)
			return
		}
		reply(ServerMessage{Type: "ack"})

	case "sync_state":
		own := seat.Load()
		if own < 0 {
			fail(errNoSeat)
			return
		}
		view, err := m.ViewForSeat(uint8(own))
		if err != nil {
			fail(err)
			return
		}
		reply(ServerMessage{Type: "ack", View: view})

	case "reset":
		if err := m.Reset(); err != nil {
			fail(err)
			return
		}
		reply(ServerMessage{Type: "ack"})

	default:
		fail(errUnknownCommand)
	}
}
