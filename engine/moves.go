package engine

import "fmt"

// ApplyDraw executes a bare draw for the current seat: the seat takes the
// pending forced-draw count (or a single card), the obligation resets, and
// the turn passes one plain step — skip/reverse semantics apply to played
// cards only, never to a draw.
func (g *GameState) ApplyDraw() (MoveInfo, error) {
	if !g.IsStarted() {
		return MoveInfo{}, fmt.Errorf("game has not started")
	}
	if g.IsGameOver() {
		return MoveInfo{}, fmt.Errorf("game is already over")
	}

	actor := g.Current
	n := g.SumDrawing
	if n == 0 {
		n = 1
	}
	g.SumDrawing = 0

	g.LastMove = MoveInfo{Seat: actor, Drew: true, Played: EmptyCard}
	g.drawInto(actor, n)
	g.LastPlayerDrew = true

	next := g.NextSeat(actor, EmptyCard)
	g.Current = next
	g.LastMove.NextSeat = next
	return g.LastMove, nil
}

// ApplyPlay plays the card at handIdx from the current seat's hand. The move
// is validated against the top card and rejected with zero mutation when
// illegal. declared is the color choice accompanying a wild-family card
// (NoColor otherwise); it is recorded for display and never affects
// legality.
func (g *GameState) ApplyPlay(handIdx uint8, declared uint8) (MoveInfo, error) {
	if !g.IsStarted() {
		return MoveInfo{}, fmt.Errorf("game has not started")
	}
	if g.IsGameOver() {
		return MoveInfo{}, fmt.Errorf("game is already over")
	}

	actor := g.Current
	seat := &g.Seats[actor]
	if handIdx >= seat.HandLen {
		return MoveInfo{}, fmt.Errorf("hand index %d out of range (hand size %d)", handIdx, seat.HandLen)
	}

	card := seat.Hand[handIdx]
	if !CanPlay(g.TopCard(), card, g.LastPlayerDrew) {
		return MoveInfo{}, fmt.Errorf("seat %d: card %04x is not playable", actor, uint16(card))
	}

	// Remove from hand preserving order, push onto the table pile.
	copy(seat.Hand[handIdx:seat.HandLen-1], seat.Hand[handIdx+1:seat.HandLen])
	seat.HandLen--
	g.TablePile[g.TableLen] = card
	g.TableLen++

	g.SumDrawing += card.DrawPenalty()
	if card.IsWildFamily() && declared <= ColorYellow {
		g.DeclaredColor = declared
	} else if !card.IsWildFamily() {
		g.DeclaredColor = NoColor
	}
	g.LastPlayerDrew = false

	g.LastMove = MoveInfo{Seat: actor, Played: card}

	finished := g.SeatFinished(actor)
	if finished {
		g.FinishedOrder[g.FinishedLen] = actor
		g.FinishedLen++
		g.LastMove.Finished = true
	}

	if g.FinishedLen == NumSeats-1 {
		g.appendLastSeat()
		g.Flags |= FlagGameOver
		g.LastMove.NextSeat = actor
		return g.LastMove, nil
	}

	next := g.NextSeat(actor, card)
	if finished && next == actor {
		// A zero-step wild that empties the hand must still hand the turn to
		// a seat that holds cards.
		next = g.step(actor)
	}
	g.Current = next
	g.LastMove.NextSeat = next
	return g.LastMove, nil
}

// appendLastSeat records the one seat still holding cards as the final entry
// of the finishing order.
func (g *GameState) appendLastSeat() {
	for s := uint8(0); s < NumSeats; s++ {
		if g.Seats[s].HandLen > 0 {
			g.FinishedOrder[g.FinishedLen] = s
			g.FinishedLen++
			return
		}
	}
}

// drawInto moves n cards from the top of the draw pile into the seat's hand,
// rebuilding the draw pile from the table pile when it runs low. Drawn cards
// are recorded in LastMove.
func (g *GameState) drawInto(seat uint8, n uint8) {
	if g.DrawLen < n+1 {
		g.rebuildDrawPile()
	}
	h := &g.Seats[seat]
	for i := uint8(0); i < n && g.DrawLen > 0; i++ {
		g.DrawLen--
		c := g.DrawPile[g.DrawLen]
		h.Hand[h.HandLen] = c
		h.HandLen++
		if g.LastMove.DrawCount < MaxForcedDraw {
			g.LastMove.DrawnCards[g.LastMove.DrawCount] = c
		}
		g.LastMove.DrawCount++
	}
}

// rebuildDrawPile recycles the table pile into the draw pile, leaving the
// top reshuffleKeep table cards where they are, then shuffles the result.
func (g *GameState) rebuildDrawPile() {
	if g.TableLen <= reshuffleKeep {
		return
	}
	moved := g.TableLen - reshuffleKeep

	// Oldest table cards feed the draw pile.
	for i := uint8(0); i < moved; i++ {
		g.DrawPile[g.DrawLen] = g.TablePile[i]
		g.DrawLen++
	}

	// Slide the kept top cards down to the bottom of the table array.
	for i := uint8(0); i < reshuffleKeep; i++ {
		g.TablePile[i] = g.TablePile[moved+i]
	}
	g.TableLen = reshuffleKeep

	// Fisher-Yates over the rebuilt draw pile.
	for i := int(g.DrawLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.DrawPile[i], g.DrawPile[j] = g.DrawPile[j], g.DrawPile[i]
	}
}
