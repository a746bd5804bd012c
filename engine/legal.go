package engine

// CanPlay reports whether proposed may be played on top, given whether the
// previous actor ended their turn by drawing. top == EmptyCard means no card
// has been played yet (anything goes). This is the single legality check for
// human and bot moves alike.
//
// Note the black-top rule: once a wild-family card sits on the table, any
// card is legal while no draw is owed. The declared color never constrains
// play; GameState.DeclaredColor exists for display only.
func CanPlay(top, proposed Card, prevActorDrew bool) bool {
	if top == EmptyCard {
		return true
	}

	// An unresolved forced-draw obligation is outstanding when the top card
	// is draw-family and the previous actor did not draw.
	oweDraw := top.IsDrawFamily() && !prevActorDrew

	// A plain wild can go on anything while no draw is owed.
	if !oweDraw && proposed.Face() == FaceWild {
		return true
	}

	// Draw four stacks onto anything, owed draw included.
	if proposed.Face() == FaceDrawFour {
		return true
	}

	// A black top card constrains nothing while no draw is owed.
	if top.Color() == ColorBlack && !oweDraw {
		return true
	}

	// An owed draw may be answered by stacking another draw-family card.
	if oweDraw && proposed.IsDrawFamily() {
		return true
	}

	if !oweDraw {
		if top.Color() == proposed.Color() {
			return true
		}
		if top.IsDigit() && proposed.IsDigit() && top.Digit() == proposed.Digit() {
			return true
		}
	}

	return false
}

// HasLegalPlay reports whether the seat holds at least one playable card.
func (g *GameState) HasLegalPlay(seat uint8) bool {
	top := g.TopCard()
	h := &g.Seats[seat]
	for i := uint8(0); i < h.HandLen; i++ {
		if CanPlay(top, h.Hand[i], g.LastPlayerDrew) {
			return true
		}
	}
	return false
}

// LegalPlays appends the hand indices of every playable card to dst and
// returns it. Allocates only if dst is too small.
func (g *GameState) LegalPlays(seat uint8, dst []uint8) []uint8 {
	top := g.TopCard()
	h := &g.Seats[seat]
	for i := uint8(0); i < h.HandLen; i++ {
		if CanPlay(top, h.Hand[i], g.LastPlayerDrew) {
			dst = append(dst, i)
		}
	}
	return dst
}
