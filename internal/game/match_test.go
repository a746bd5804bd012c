package game

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Om-Tiwari/UNOArena/engine"
	"github.com/Om-Tiwari/UNOArena/internal/bot"
	"github.com/Om-Tiwari/UNOArena/internal/config"
)

// eventRecorder captures match events for assertions. The bot driver
// publishes from its own goroutine, so access is synchronized.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) byType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) waitFor(t *testing.T, typ EventType, timeout time.Duration) Event {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if evs := r.byType(typ); len(evs) > 0 {
			return evs[len(evs)-1]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s event within %s", typ, timeout)
	return Event{}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// failingMover makes every decision-service call fail, so bot seats run on
// the deterministic fallback policy.
type failingMover struct{}

func (failingMover) RequestMove(context.Context, bot.MoveRequest) (*bot.MoveResponse, error) {
	return nil, fmt.Errorf("decision service unavailable")
}

// drawingMover always answers with a bare draw.
type drawingMover struct{}

func (drawingMover) RequestMove(_ context.Context, req bot.MoveRequest) (*bot.MoveResponse, error) {
	return &bot.MoveResponse{Action: "draw", Provider: req.Provider, Model: "stub"}, nil
}

func setupMatch(t *testing.T, mover bot.Mover) (*Match, *eventRecorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Game.BotTurnDelay = 1
	orc := bot.NewOrchestrator(mover, quietLogger())
	m := NewMatch(cfg, orc, quietLogger())
	m.seed = 42

	rec := &eventRecorder{}
	cancel := m.Subscribe(rec.record)
	t.Cleanup(cancel)
	t.Cleanup(m.Close)
	return m, rec
}

// joinHumans seats and readies n human players starting at seat 0.
func joinHumans(t *testing.T, m *Match, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, m.JoinSeat(uint8(i), fmt.Sprintf("Player %d", i+1), uuid.New(), uuid.New()))
		require.NoError(t, m.SignalReady(uint8(i)))
	}
}

func TestJoinSeat(t *testing.T) {
	m, rec := setupMatch(t, failingMover{})

	require.NoError(t, m.JoinSeat(1, "Alice", uuid.New(), uuid.New()))
	assert.Error(t, m.JoinSeat(1, "Bob", uuid.New(), uuid.New()), "taken seat must reject")
	assert.Error(t, m.JoinSeat(9, "Cara", uuid.New(), uuid.New()), "out-of-range seat must reject")

	evs := rec.byType(EventPlayersChanged)
	require.NotEmpty(t, evs)
	roster := evs[len(evs)-1].Seats
	assert.Equal(t, "Alice", roster[1].Name)
	assert.False(t, roster[1].Ready)
	assert.False(t, roster[0].Occupied())
}

func TestFillRemainingWithBots_Mixed(t *testing.T) {
	m, _ := setupMatch(t, failingMover{})
	require.NoError(t, m.JoinSeat(0, "Alice", uuid.New(), uuid.New()))

	require.NoError(t, m.FillRemainingWithBots("mixed"))

	roster := m.Seats()
	assert.False(t, roster[0].IsBot)
	for i := 1; i < engine.NumSeats; i++ {
		assert.True(t, roster[i].IsBot, "seat %d should be a bot", i)
		assert.True(t, roster[i].Ready)
		assert.NotEmpty(t, roster[i].Model)
	}
	// Round-robin over the registry in stable name order.
	assert.Equal(t, "cerebras", roster[1].Provider)
	assert.Equal(t, "gemini", roster[2].Provider)
	assert.Equal(t, "groq", roster[3].Provider)
}

func TestFillRemainingWithBots_SingleProvider(t *testing.T) {
	m, _ := setupMatch(t, failingMover{})

	require.NoError(t, m.FillRemainingWithBots("groq"))
	for _, s := range m.Seats() {
		assert.Equal(t, "groq", s.Provider)
	}

	m2, _ := setupMatch(t, failingMover{})
	assert.Error(t, m2.FillRemainingWithBots("openai"), "unknown provider must reject")
}

func TestStartMatchRequiresFullReadyTable(t *testing.T) {
	m, rec := setupMatch(t, failingMover{})

	assert.Error(t, m.StartMatch(), "empty table must not start")

	require.NoError(t, m.JoinSeat(0, "Alice", uuid.New(), uuid.New()))
	require.NoError(t, m.FillRemainingWithBots("mixed"))
	assert.Error(t, m.StartMatch(), "unready human must block start")

	require.NoError(t, m.SignalReady(0))
	require.NoError(t, m.StartMatch())
	assert.Error(t, m.StartMatch(), "double start must reject")

	inits := rec.byType(EventGameInit)
	require.Len(t, inits, engine.NumSeats)
	seen := map[int]bool{}
	for _, ev := range inits {
		seen[ev.TargetSeat] = true
		require.NotNil(t, ev.View)
		assert.Equal(t, ev.TargetSeat, ev.View.Seat)
		assert.Len(t, ev.View.Hand, 7)
		assert.Len(t, ev.View.Others, engine.NumSeats-1)
		require.NotNil(t, ev.View.TopCard)
		assert.NotEqual(t, "black", ev.View.TopCard.Color)
		for _, o := range ev.View.Others {
			assert.Equal(t, 7, o.Cards)
		}
	}
	assert.Len(t, seen, engine.NumSeats, "every seat gets its own private init")
}

func TestHumanDrawMove(t *testing.T) {
	m, rec := setupMatch(t, failingMover{})
	joinHumans(t, m, engine.NumSeats)
	require.NoError(t, m.StartMatch())

	m.mu.Lock()
	actor := m.eng.Current
	other := (actor + 1) % engine.NumSeats
	m.mu.Unlock()

	assert.Error(t, m.ApplyMove(other, true, uuid.Nil, ""), "out-of-turn move must reject")
	assert.Error(t, m.ApplyMove(actor, false, uuid.New(), ""), "unknown card must reject")

	require.NoError(t, m.ApplyMove(actor, true, uuid.Nil, ""))

	moves := rec.byType(EventMove)
	require.Len(t, moves, 2, "public move plus private drawn-card copy")

	public := moves[0]
	assert.Equal(t, BroadcastSeat, public.TargetSeat)
	assert.True(t, public.Move.Drew)
	assert.Equal(t, int(actor), public.Move.PreviousActor)
	assert.Equal(t, 1, public.Move.DrawCount)
	assert.Empty(t, public.Move.DrawnCards, "card identities stay private")

	private := moves[1]
	assert.Equal(t, int(actor), private.TargetSeat)
	require.Len(t, private.Move.DrawnCards, 1)
	assert.NotEqual(t, uuid.Nil, private.Move.DrawnCards[0].ID)
}

func TestViewRedaction(t *testing.T) {
	m, _ := setupMatch(t, failingMover{})

	_, err := m.ViewForSeat(0)
	assert.Error(t, err, "no view before start")

	joinHumans(t, m, engine.NumSeats)
	require.NoError(t, m.StartMatch())

	view, err := m.ViewForSeat(2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Seat)
	assert.Len(t, view.Hand, 7)
	for _, card := range view.Hand {
		assert.NotEqual(t, uuid.Nil, card.ID)
		assert.NotEmpty(t, card.Color)
	}
	for _, o := range view.Others {
		assert.NotEqual(t, 2, o.Seat)
		assert.Equal(t, 7, o.Cards)
	}
}

func TestSubscribeDisposer(t *testing.T) {
	m, _ := setupMatch(t, failingMover{})

	var got []Event
	cancel := m.Subscribe(func(ev Event) { got = append(got, ev) })

	require.NoError(t, m.JoinSeat(0, "Alice", uuid.New(), uuid.New()))
	require.Len(t, got, 1)

	cancel()
	require.NoError(t, m.JoinSeat(1, "Bob", uuid.New(), uuid.New()))
	assert.Len(t, got, 1, "disposed observer must not receive events")
}

func TestBotsPlayToCompletion(t *testing.T) {
	m, rec := setupMatch(t, failingMover{})
	require.NoError(t, m.FillRemainingWithBots("mixed"))
	require.NoError(t, m.StartMatch())

	finish := rec.waitFor(t, EventFinishGame, 30*time.Second)
	require.NotNil(t, finish.Finish)
	order := finish.Finish.OrderedSeats
	require.Len(t, order, engine.NumSeats)

	seen := map[int]bool{}
	for _, s := range order {
		assert.False(t, seen[s], "seat %d finished twice", s)
		seen[s] = true
	}

	// The event carries the finishing seats themselves, in the same order.
	require.Len(t, finish.Finish.Seats, engine.NumSeats)
	roster := m.Seats()
	for i, s := range finish.Finish.Seats {
		assert.Equal(t, roster[order[i]].Name, s.Name)
		assert.Equal(t, uint8(order[i]), s.Index)
	}

	// All bot moves came from the fallback policy.
	for _, ev := range rec.byType(EventMove) {
		if ev.TargetSeat == BroadcastSeat {
			assert.Equal(t, bot.FallbackProvider, ev.Move.Provider)
		}
	}
}

func TestBotProviderPropagatesToMoveEvents(t *testing.T) {
	m, rec := setupMatch(t, drawingMover{})
	require.NoError(t, m.FillRemainingWithBots("groq"))
	require.NoError(t, m.StartMatch())

	ev := rec.waitFor(t, EventMove, 5*time.Second)
	require.NotNil(t, ev.Move)
	assert.True(t, ev.Move.Drew)
	assert.Equal(t, "groq", ev.Move.Provider)

	m.Close()
}

func TestResetAfterFinish(t *testing.T) {
	m, rec := setupMatch(t, failingMover{})
	require.NoError(t, m.FillRemainingWithBots("mixed"))
	require.NoError(t, m.StartMatch())

	assert.Error(t, m.Reset(), "running match must not reset")

	rec.waitFor(t, EventFinishGame, 30*time.Second)
	require.NoError(t, m.Reset())

	roster := m.Seats()
	assert.True(t, roster[0].Ready, "bots stay ready")

	_, err := m.ViewForSeat(0)
	assert.Error(t, err, "reset table has no live view")
}

func TestResetClearsHumanReadiness(t *testing.T) {
	m, _ := setupMatch(t, failingMover{})
	require.NoError(t, m.JoinSeat(0, "Alice", uuid.New(), uuid.New()))
	require.NoError(t, m.SignalReady(0))
	require.NoError(t, m.FillRemainingWithBots("mixed"))

	require.NoError(t, m.Reset())
	roster := m.Seats()
	assert.False(t, roster[0].Ready, "human readiness clears on reset")
	assert.True(t, roster[1].Ready, "bots stay ready")
}
