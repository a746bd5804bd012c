// Package engine implements the UNO table rules.
//
// This package provides a flat, allocation-free turn engine: legality
// checking, turn resolution under direction reversal and skips, draw-pile
// bookkeeping with table-pile recycling, and finish-order detection. It has
// no dependencies and no I/O; the service adapter in internal/game owns
// identities, events and bot orchestration.
package engine

const (
	NumSeats = 4
	DeckSize = 108

	// MaxForcedDraw bounds a single forced draw: every draw two (8×2) and
	// draw four (4×4) stacked at once.
	MaxForcedDraw = 32

	// reshuffleKeep is how many table cards stay in place when the rest of
	// the table pile is recycled into a fresh draw pile.
	reshuffleKeep = 5
)

// SeatState holds one seat's hand. A seat is finished once its hand empties
// after the deal; the turn resolver then skips it for the rest of the game.
type SeatState struct {
	Hand    [DeckSize]Card
	HandLen uint8
}

// MoveInfo summarizes the most recently applied move.
type MoveInfo struct {
	Seat       uint8
	NextSeat   uint8
	Played     Card // EmptyCard when the move was a bare draw
	Drew       bool
	DrawCount  uint8
	DrawnCards [MaxForcedDraw]Card
	Finished   bool // the acting seat emptied its hand on this move
}

// GameState holds the complete, self-contained state of one UNO game.
// It is a flat value type (no pointers, no slices): snapshotting for tests
// and invariant checks is a plain struct copy.
type GameState struct {
	Seats          [NumSeats]SeatState
	DrawPile       [DeckSize]Card // top of pile = DrawPile[DrawLen-1]
	DrawLen        uint8
	TablePile      [DeckSize]Card // top of pile = TablePile[TableLen-1]
	TableLen       uint8
	Direction      int8 // +1 or -1
	Current        uint8
	SumDrawing     uint8
	LastPlayerDrew bool
	DeclaredColor  uint8 // color declared after a wild-family play; display only
	FinishedOrder  [NumSeats]uint8
	FinishedLen    uint8
	Flags          uint16
	RNG            uint64
	LastMove       MoveInfo
}

const (
	FlagGameStarted uint16 = 1 << 0
	FlagGameOver    uint16 = 1 << 1
)

func (g *GameState) IsStarted() bool  { return g.Flags&FlagGameStarted != 0 }
func (g *GameState) IsGameOver() bool { return g.Flags&FlagGameOver != 0 }

// xorshift64 RNG — inline, no interface.
func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// NewGame initializes a GameState with the given seed. The deck sits in the
// draw pile in canonical order; call Deal to shuffle and start play.
func NewGame(seed uint64) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.DrawLen = buildDeck(&g.DrawPile)
	g.Direction = 1
	g.DeclaredColor = NoColor
	return g
}

// Deal shuffles the deck, gives handSize cards to every seat, flips the seed
// card onto the table, and picks a random starting seat.
func (g *GameState) Deal(handSize uint8) {
	// Fisher-Yates shuffle.
	for i := int(g.DrawLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.DrawPile[i], g.DrawPile[j] = g.DrawPile[j], g.DrawPile[i]
	}

	for c := uint8(0); c < handSize; c++ {
		for s := uint8(0); s < NumSeats; s++ {
			g.DrawLen--
			seat := &g.Seats[s]
			seat.Hand[seat.HandLen] = g.DrawPile[g.DrawLen]
			seat.HandLen++
		}
	}

	g.flipSeedCard()

	g.Current = uint8(g.randN(NumSeats))
	g.Flags |= FlagGameStarted
}

// flipSeedCard moves the topmost non-black draw card onto the table to open
// play. Wild-family cards cannot seed the table, so they are skipped in
// place and remain in the draw pile.
func (g *GameState) flipSeedCard() {
	for i := int(g.DrawLen) - 1; i >= 0; i-- {
		c := g.DrawPile[i]
		if c.Color() == ColorBlack {
			continue
		}
		copy(g.DrawPile[i:g.DrawLen-1], g.DrawPile[i+1:g.DrawLen])
		g.DrawLen--
		g.TablePile[g.TableLen] = c
		g.TableLen++
		return
	}
}

// TopCard returns the top of the table pile, or EmptyCard before the flip.
func (g *GameState) TopCard() Card {
	if g.TableLen == 0 {
		return EmptyCard
	}
	return g.TablePile[g.TableLen-1]
}

// SeatFinished reports whether the seat has emptied its hand in a started
// game.
func (g *GameState) SeatFinished(seat uint8) bool {
	return g.IsStarted() && g.Seats[seat].HandLen == 0
}

// ActiveSeats returns the number of seats still holding cards.
func (g *GameState) ActiveSeats() uint8 {
	n := uint8(0)
	for s := uint8(0); s < NumSeats; s++ {
		if g.Seats[s].HandLen > 0 {
			n++
		}
	}
	return n
}

// CountCards returns the total number of cards across hands and piles.
// It is constant for the lifetime of a game.
func (g *GameState) CountCards() int {
	total := int(g.DrawLen) + int(g.TableLen)
	for s := 0; s < NumSeats; s++ {
		total += int(g.Seats[s].HandLen)
	}
	return total
}

// FindInHand returns the hand index of the card with the given deck slot,
// or -1 if the seat does not hold it.
func (g *GameState) FindInHand(seat uint8, slot uint8) int {
	h := &g.Seats[seat]
	for i := uint8(0); i < h.HandLen; i++ {
		if h.Hand[i].Slot() == slot {
			return int(i)
		}
	}
	return -1
}

// Snapshot is a complete value-copy of GameState.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }
