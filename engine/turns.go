package engine

// step advances one position from the given seat in the current direction,
// skipping seats whose hands are empty. The loop is bounded by NumSeats, so
// with a single seat still holding cards it returns that seat (a no-op when
// the seat is `from` itself).
func (g *GameState) step(from uint8) uint8 {
	next := from
	for i := 0; i < NumSeats; i++ {
		next = uint8((int(next) + int(g.Direction) + NumSeats) % NumSeats)
		if g.Seats[next].HandLen > 0 {
			return next
		}
	}
	return from
}

// NextSeat computes which seat acts after `from`, given the card just played
// (EmptyCard for a bare draw). Reverse flips Direction in place before
// stepping, and heads-up it acts like a skip: the turn comes straight back to
// the seat that played it. Skip consumes two steps; a plain wild consumes
// zero steps, so the same seat acts again — that is the table rule here, not
// an accident. Everything else, including a bare draw, consumes one step.
func (g *GameState) NextSeat(from uint8, played Card) uint8 {
	steps := 1
	if played != EmptyCard {
		switch played.Face() {
		case FaceReverse:
			g.Direction = -g.Direction
			if g.ActiveSeats() == 2 && g.Seats[from].HandLen > 0 {
				steps = 2
			}
		case FaceSkip:
			steps = 2
		case FaceWild:
			steps = 0
		}
	}

	next := from
	for i := 0; i < steps; i++ {
		next = g.step(next)
	}
	return next
}
