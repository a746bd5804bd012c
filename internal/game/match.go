// Package game hosts one UNO match: four seats, the authoritative engine
// state, observer notifications, and the loop that drives bot seats through
// the decision orchestrator. All cross-match isolation is structural — a
// Match owns everything it touches.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Om-Tiwari/UNOArena/engine"
	"github.com/Om-Tiwari/UNOArena/internal/bot"
	"github.com/Om-Tiwari/UNOArena/internal/cache"
	"github.com/Om-Tiwari/UNOArena/internal/config"
	"github.com/Om-Tiwari/UNOArena/internal/models"
)

// Match is a single table. One mutex guards all of it; event callbacks run
// with the lock held and must not call back into the match.
type Match struct {
	ID uuid.UUID

	mu  sync.Mutex
	log logrus.FieldLogger
	cfg *config.Config
	orc *bot.Orchestrator

	seats [engine.NumSeats]models.Seat
	eng   engine.GameState
	seed  uint64 // 0 = derive from the clock at start

	cardIDs  [engine.DeckSize]uuid.UUID
	slotByID map[uuid.UUID]uint8

	subs    map[int]func(Event)
	nextSub int

	actionIndex int
	botsRunning bool
}

// NewMatch creates an empty table.
func NewMatch(cfg *config.Config, orc *bot.Orchestrator, log logrus.FieldLogger) *Match {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Match{
		ID:   uuid.New(),
		cfg:  cfg,
		orc:  orc,
		subs: make(map[int]func(Event)),
	}
	m.log = log.WithField("match", m.ID)
	for i := range m.seats {
		m.seats[i] = models.Seat{Index: uint8(i), Name: fmt.Sprintf("Seat %d", i+1)}
	}
	return m
}

// Subscribe registers an observer for every event the match publishes and
// returns its disposer. Observers receive seat-targeted events too and must
// respect Event.TargetSeat when relaying them.
func (m *Match) Subscribe(fn func(Event)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// publish delivers an event to every subscriber.
// Assumes lock is held by caller.
func (m *Match) publish(ev Event) {
	for _, fn := range m.subs {
		fn(ev)
	}
}

func (m *Match) publishSeats() {
	roster := make([]models.Seat, engine.NumSeats)
	copy(roster, m.seats[:])
	m.publish(Event{Type: EventPlayersChanged, TargetSeat: BroadcastSeat, Seats: roster})
}

// JoinSeat claims a seat for a human player.
func (m *Match) JoinSeat(seat uint8, name string, userID, connID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng.IsStarted() {
		return fmt.Errorf("match already started")
	}
	if seat >= engine.NumSeats {
		return fmt.Errorf("seat %d out of range", seat)
	}
	if m.seats[seat].Occupied() {
		return fmt.Errorf("seat %d is taken", seat)
	}

	m.seats[seat].Name = name
	m.seats[seat].UserID = userID
	m.seats[seat].ConnID = connID
	m.log.WithFields(logrus.Fields{"seat": seat, "name": name}).Info("seat joined")
	m.logAction(int(seat), "seat_join", map[string]interface{}{"name": name})
	m.publishSeats()
	return nil
}

// FillRemainingWithBots assigns every empty seat to a bot. mode names a
// provider from the registry, or "mixed" to round-robin all of them.
func (m *Match) FillRemainingWithBots(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng.IsStarted() {
		return fmt.Errorf("match already started")
	}

	providers := m.cfg.ProviderNames()
	if len(providers) == 0 {
		return fmt.Errorf("no providers configured")
	}
	if mode == "" {
		mode = "mixed"
	}
	if mode != "mixed" {
		if _, ok := m.cfg.Providers[mode]; !ok {
			return fmt.Errorf("unknown provider %q", mode)
		}
		providers = []string{mode}
	}

	n := 0
	for i := range m.seats {
		if m.seats[i].Occupied() {
			continue
		}
		key := providers[n%len(providers)]
		m.seats[i].IsBot = true
		m.seats[i].Ready = true
		m.seats[i].Provider = key
		m.seats[i].Model = m.cfg.Providers[key].DefaultModel
		m.seats[i].Name = fmt.Sprintf("Bot %d (%s)", i+1, key)
		n++
	}
	if n > 0 {
		m.log.WithFields(logrus.Fields{"bots": n, "mode": mode}).Info("bots seated")
		m.logAction(-1, "bots_seated", map[string]interface{}{"count": n, "mode": mode})
		m.publishSeats()
	}
	return nil
}

// SignalReady marks a human seat as ready to start.
func (m *Match) SignalReady(seat uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seat >= engine.NumSeats {
		return fmt.Errorf("seat %d out of range", seat)
	}
	if !m.seats[seat].Occupied() {
		return fmt.Errorf("seat %d is empty", seat)
	}
	if m.seats[seat].Ready {
		return nil
	}
	m.seats[seat].Ready = true
	m.logAction(int(seat), "seat_ready", nil)
	m.publishSeats()
	return nil
}

// StartMatch deals the table and begins play. Every seat must be occupied
// and ready. If the opening seat is a bot, the driver loop starts at once.
func (m *Match) StartMatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng.IsStarted() {
		return fmt.Errorf("match already started")
	}
	for i := range m.seats {
		if !m.seats[i].Occupied() {
			return fmt.Errorf("seat %d is empty", i)
		}
		if !m.seats[i].Ready {
			return fmt.Errorf("seat %d is not ready", i)
		}
	}

	seed := m.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	m.eng = engine.NewGame(seed)
	m.eng.Deal(uint8(m.cfg.Game.HandSize))
	m.initCardIDs()

	m.log.WithField("current", m.eng.Current).Info("match started")
	m.logAction(-1, "match_start", map[string]interface{}{"startingSeat": int(m.eng.Current)})

	for s := uint8(0); s < engine.NumSeats; s++ {
		m.publish(Event{Type: EventGameInit, TargetSeat: int(s), View: m.viewForSeat(s)})
	}

	m.maybeDriveBots()
	return nil
}

// ApplyMove plays one human turn: a bare draw, or the card with the given
// ID. color is the declared color for wild-family plays. After the turn
// completes, the bot driver takes over if the next actor is a bot.
func (m *Match) ApplyMove(seat uint8, draw bool, cardID uuid.UUID, color string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seat >= engine.NumSeats {
		return fmt.Errorf("seat %d out of range", seat)
	}
	if m.seats[seat].IsBot {
		return fmt.Errorf("seat %d is driven by the match, not by clients", seat)
	}
	if err := m.applyLocked(seat, draw, cardID, color, "", ""); err != nil {
		return err
	}
	m.maybeDriveBots()
	return nil
}

// applyLocked validates and executes one turn for any seat, then publishes
// the resulting events. Assumes lock is held by caller.
func (m *Match) applyLocked(seat uint8, draw bool, cardID uuid.UUID, color string, provider, reasoning string) error {
	if !m.eng.IsStarted() {
		return fmt.Errorf("match has not started")
	}
	if m.eng.IsGameOver() {
		return fmt.Errorf("match is over")
	}
	if m.eng.Current != seat {
		return fmt.Errorf("seat %d moved out of turn (current %d)", seat, m.eng.Current)
	}

	var info engine.MoveInfo
	var err error
	if draw {
		info, err = m.eng.ApplyDraw()
	} else {
		slot, ok := m.slotByID[cardID]
		if !ok {
			return fmt.Errorf("unknown card %s", cardID)
		}
		idx := m.eng.FindInHand(seat, slot)
		if idx < 0 {
			return fmt.Errorf("card %s is not in seat %d's hand", cardID, seat)
		}
		declared := engine.NoColor
		if c, ok := colorFromName(color); ok {
			declared = c
		}
		info, err = m.eng.ApplyPlay(uint8(idx), declared)
	}
	if err != nil {
		return err
	}

	m.emitMove(info, color, provider, reasoning)
	if m.eng.IsGameOver() {
		m.emitFinish()
	}
	return nil
}

// emitMove publishes the public copy of a completed turn, plus a private
// copy to the actor carrying the identities of any cards drawn.
// Assumes lock is held by caller.
func (m *Match) emitMove(info engine.MoveInfo, color, provider, reasoning string) {
	ev := MoveEvent{
		PreviousActor: int(info.Seat),
		NextActor:     int(info.NextSeat),
		Drew:          info.Drew,
		DrawCount:     int(info.DrawCount),
		Provider:      provider,
		Reasoning:     reasoning,
		Finished:      info.Finished,
	}
	payload := map[string]interface{}{
		"nextActor": ev.NextActor,
		"drew":      ev.Drew,
	}
	if info.Played != engine.EmptyCard {
		card := m.wireCard(info.Played)
		ev.Card = &card
		payload["card"] = card
		if info.Played.IsWildFamily() {
			ev.Color = color
			payload["color"] = color
		}
	}
	if info.DrawCount > 0 {
		payload["drawCount"] = ev.DrawCount
	}
	if provider != "" {
		payload["provider"] = provider
	}

	m.publish(Event{Type: EventMove, TargetSeat: BroadcastSeat, Move: &ev})

	if info.Drew && info.DrawCount > 0 {
		private := ev
		n := int(info.DrawCount)
		if n > len(info.DrawnCards) {
			n = len(info.DrawnCards)
		}
		private.DrawnCards = make([]models.Card, n)
		for i := 0; i < n; i++ {
			private.DrawnCards[i] = m.wireCard(info.DrawnCards[i])
		}
		m.publish(Event{Type: EventMove, TargetSeat: int(info.Seat), Move: &private})
	}

	m.logAction(int(info.Seat), "move", payload)
}

// emitFinish publishes the final ordering, winner first.
// Assumes lock is held by caller.
func (m *Match) emitFinish() {
	order := make([]int, m.eng.FinishedLen)
	seats := make([]models.Seat, m.eng.FinishedLen)
	for i := uint8(0); i < m.eng.FinishedLen; i++ {
		order[i] = int(m.eng.FinishedOrder[i])
		seats[i] = m.seats[m.eng.FinishedOrder[i]]
	}
	m.log.WithField("order", order).Info("match finished")
	m.logAction(-1, "match_finish", map[string]interface{}{"orderedSeats": order})
	m.publish(Event{Type: EventFinishGame, TargetSeat: BroadcastSeat, Finish: &FinishEvent{OrderedSeats: order, Seats: seats}})
}

// Close abandons a running match. The engine is marked terminal so the bot
// driver loop exits on its next pass; no finish ordering is published.
func (m *Match) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.eng.IsStarted() || m.eng.IsGameOver() {
		return
	}
	m.eng.Flags |= engine.FlagGameOver
	m.log.Info("match closed")
	m.logAction(-1, "match_close", nil)
}

// Reset returns a finished table to the lobby state for a rematch: seats
// keep their occupants, readiness clears for humans, engine state resets.
func (m *Match) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng.IsStarted() && !m.eng.IsGameOver() {
		return fmt.Errorf("match still in progress")
	}
	m.eng = engine.GameState{}
	m.slotByID = nil
	for i := range m.seats {
		if !m.seats[i].IsBot {
			m.seats[i].Ready = false
		}
	}
	m.logAction(-1, "match_reset", nil)
	m.publishSeats()
	return nil
}

// ViewForSeat returns the redacted table state for one seat, for transports
// serving late joiners and reconnects.
func (m *Match) ViewForSeat(seat uint8) (*TableView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seat >= engine.NumSeats {
		return nil, fmt.Errorf("seat %d out of range", seat)
	}
	if !m.eng.IsStarted() {
		return nil, fmt.Errorf("match has not started")
	}
	return m.viewForSeat(seat), nil
}

// Seats returns a copy of the current roster.
func (m *Match) Seats() []models.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := make([]models.Seat, engine.NumSeats)
	copy(roster, m.seats[:])
	return roster
}

// logAction records one action with the historian, asynchronously and
// best-effort.
// Assumes lock is held by caller.
func (m *Match) logAction(actorSeat int, actionType string, payload map[string]interface{}) {
	m.actionIndex++
	rec := cache.MatchActionRecord{
		MatchID:       m.ID,
		ActionIndex:   m.actionIndex,
		ActorSeat:     actorSeat,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishMatchAction(ctx, rec); err != nil {
			m.log.WithError(err).Warnf("failed recording action %d (%s)", rec.ActionIndex, rec.ActionType)
		}
	}()
}
