package bot

import "github.com/Om-Tiwari/UNOArena/engine"

var colorNames = [...]string{"red", "blue", "green", "yellow"}

func validColorName(name string) bool {
	for _, n := range colorNames {
		if n == name {
			return true
		}
	}
	return false
}

// Fallback is the deterministic local policy. It is total: whatever the hand
// and table look like, it produces a move the table will accept.
//
// Preference order among legal cards: a card matching the table color, then
// any action card other than a plain wild (a draw four qualifies), then the
// first legal card in hand order. With no legal card it draws.
func Fallback(in TurnInput) Decision {
	legal := make([]HandCard, 0, len(in.Hand))
	for _, hc := range in.Hand {
		if engine.CanPlay(in.Top, hc.Engine, in.LastPlayerDrew) {
			legal = append(legal, hc)
		}
	}
	if len(legal) == 0 {
		return Decision{Draw: true, Provider: FallbackProvider, Reasoning: "no playable card"}
	}

	pick, reasoning := chooseFallbackCard(in.Top, legal)
	d := Decision{
		CardID:    pick.Wire.ID,
		Provider:  FallbackProvider,
		Reasoning: reasoning,
	}
	if pick.Engine.IsWildFamily() {
		d.Color = dominantColor(in.Hand, pick)
	}
	return d
}

func chooseFallbackCard(top engine.Card, legal []HandCard) (HandCard, string) {
	if top != engine.EmptyCard && top.Color() != engine.ColorBlack {
		for _, hc := range legal {
			if hc.Engine.Color() == top.Color() {
				return hc, "matches the table color"
			}
		}
	}
	for _, hc := range legal {
		if hc.Engine.IsAction() && hc.Engine.Face() != engine.FaceWild {
			return hc, "plays an action card"
		}
	}
	return legal[0], "first playable card"
}

// dominantColor picks the declared color for a wild-family play: the color
// most represented in the rest of the hand, red when the hand gives no
// signal.
func dominantColor(hand []HandCard, played HandCard) string {
	var counts [4]int
	for _, hc := range hand {
		if hc.Wire.ID == played.Wire.ID {
			continue
		}
		if c := hc.Engine.Color(); c <= engine.ColorYellow {
			counts[c]++
		}
	}
	best := engine.ColorRed
	for c := engine.ColorBlue; c <= engine.ColorYellow; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return colorNames[best]
}
