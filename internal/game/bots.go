// bots.go — the driver loop for bot seats. Each completed turn hands control
// back here; the loop keeps asking the orchestrator for decisions while the
// current actor is a bot, and exits as soon as a human is up or the match
// ends. Decisions are requested outside the match lock so a slow decision
// service never blocks human moves or observer registration.
package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Om-Tiwari/UNOArena/engine"
	"github.com/Om-Tiwari/UNOArena/internal/bot"
)

// maybeDriveBots starts the driver loop when the current actor is a bot and
// no loop is already running.
// Assumes lock is held by caller.
func (m *Match) maybeDriveBots() {
	if m.botsRunning || m.orc == nil {
		return
	}
	if !m.eng.IsStarted() || m.eng.IsGameOver() {
		return
	}
	if !m.seats[m.eng.Current].IsBot {
		return
	}
	m.botsRunning = true
	go m.runBotTurns()
}

// runBotTurns is the driver loop goroutine.
func (m *Match) runBotTurns() {
	for {
		m.mu.Lock()
		if !m.eng.IsStarted() || m.eng.IsGameOver() || !m.seats[m.eng.Current].IsBot {
			m.botsRunning = false
			m.mu.Unlock()
			return
		}
		seat := m.eng.Current
		in := m.turnInputLocked(seat)
		delay := m.cfg.Game.BotTurnDelayDuration()
		m.mu.Unlock()

		// One decision per turn, outside the lock. The orchestrator is
		// total: it always comes back with a move.
		d := m.orc.Decide(context.Background(), in)

		m.mu.Lock()
		if m.eng.IsStarted() && !m.eng.IsGameOver() && m.eng.Current == seat {
			if err := m.applyLocked(seat, d.Draw, d.CardID, d.Color, d.Provider, d.Reasoning); err != nil {
				// Should not happen for validated decisions; a bare draw is
				// always applicable and keeps the table moving.
				m.log.WithError(err).WithField("seat", seat).Warn("bot move rejected, drawing instead")
				if derr := m.applyLocked(seat, true, uuid.Nil, "", bot.FallbackProvider, "forced draw"); derr != nil {
					m.log.WithError(derr).WithField("seat", seat).Error("forced draw failed, stopping bot driver")
					m.botsRunning = false
					m.mu.Unlock()
					return
				}
			}
		}
		m.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// turnInputLocked assembles the orchestrator's view of the current turn.
// Assumes lock is held by caller.
func (m *Match) turnInputLocked(seat uint8) bot.TurnInput {
	h := &m.eng.Seats[seat]
	hand := make([]bot.HandCard, h.HandLen)
	for i := uint8(0); i < h.HandLen; i++ {
		c := h.Hand[i]
		hand[i] = bot.HandCard{Wire: m.wireCard(c), Engine: c}
	}

	others := make([]bot.SeatView, 0, engine.NumSeats-1)
	for _, o := range m.opponentViews(seat) {
		others = append(others, bot.SeatView{Name: o.Name, Cards: o.Cards})
	}

	return bot.TurnInput{
		SeatName:       m.seats[seat].Name,
		Provider:       m.seats[seat].Provider,
		Model:          m.seats[seat].Model,
		Hand:           hand,
		Top:            m.eng.TopCard(),
		TableStack:     m.tableStack(),
		Others:         others,
		Direction:      int(m.eng.Direction),
		SumDrawing:     int(m.eng.SumDrawing),
		LastPlayerDrew: m.eng.LastPlayerDrew,
	}
}
