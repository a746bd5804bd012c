// adapter.go — bridge between engine card values and wire representations.
package game

import (
	"github.com/google/uuid"

	"github.com/Om-Tiwari/UNOArena/engine"
	"github.com/Om-Tiwari/UNOArena/internal/models"
)

// tableStackLimit caps how much pile history the decision service sees.
const tableStackLimit = 10

var colorNames = [...]string{"red", "blue", "green", "yellow", "black"}

func colorName(color uint8) string {
	if int(color) < len(colorNames) {
		return colorNames[color]
	}
	return ""
}

func colorFromName(name string) (uint8, bool) {
	for i, n := range colorNames[:4] {
		if n == name {
			return uint8(i), true
		}
	}
	return engine.NoColor, false
}

func actionName(face uint8) string {
	switch face {
	case engine.FaceSkip:
		return "skip"
	case engine.FaceReverse:
		return "reverse"
	case engine.FaceDrawTwo:
		return "draw two"
	case engine.FaceWild:
		return "wild"
	case engine.FaceDrawFour:
		return "draw four"
	default:
		return ""
	}
}

// initCardIDs assigns every physical deck position a UUID once per match.
// Because engine cards carry their deck slot, the mapping never needs
// updating as cards move between hands and piles.
func (m *Match) initCardIDs() {
	m.slotByID = make(map[uuid.UUID]uint8, engine.DeckSize)
	for slot := 0; slot < engine.DeckSize; slot++ {
		id := uuid.New()
		m.cardIDs[slot] = id
		m.slotByID[id] = uint8(slot)
	}
}

// wireCard converts an engine card into its client representation.
func (m *Match) wireCard(c engine.Card) models.Card {
	wire := models.Card{
		ID:    m.cardIDs[c.Slot()],
		Color: colorName(c.Color()),
	}
	if c.IsDigit() {
		d := int(c.Digit())
		wire.Digit = &d
	} else {
		wire.Action = actionName(c.Face())
	}
	return wire
}

// seatHand returns the wire view of a seat's full hand.
// Assumes lock is held by caller.
func (m *Match) seatHand(seat uint8) []models.Card {
	h := &m.eng.Seats[seat]
	hand := make([]models.Card, h.HandLen)
	for i := uint8(0); i < h.HandLen; i++ {
		hand[i] = m.wireCard(h.Hand[i])
	}
	return hand
}

// tableStack returns the table pile top-first, newest card at index 0.
// Assumes lock is held by caller.
func (m *Match) tableStack() []models.Card {
	n := int(m.eng.TableLen)
	if n > tableStackLimit {
		n = tableStackLimit
	}
	stack := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		stack = append(stack, m.wireCard(m.eng.TablePile[int(m.eng.TableLen)-1-i]))
	}
	return stack
}

// topCard returns the wire view of the table top, nil before the flip.
// Assumes lock is held by caller.
func (m *Match) topCard() *models.Card {
	top := m.eng.TopCard()
	if top == engine.EmptyCard {
		return nil
	}
	wire := m.wireCard(top)
	return &wire
}

// opponentViews lists every seat except viewer in turn order after it.
// Assumes lock is held by caller.
func (m *Match) opponentViews(viewer uint8) []OpponentView {
	others := make([]OpponentView, 0, engine.NumSeats-1)
	for off := uint8(1); off < engine.NumSeats; off++ {
		s := (viewer + off) % engine.NumSeats
		others = append(others, OpponentView{
			Seat:  int(s),
			Name:  m.seats[s].Name,
			Cards: int(m.eng.Seats[s].HandLen),
		})
	}
	return others
}

// viewForSeat builds the redacted table state shown to one seat.
// Assumes lock is held by caller.
func (m *Match) viewForSeat(seat uint8) *TableView {
	view := &TableView{
		Seat:           int(seat),
		Hand:           m.seatHand(seat),
		Others:         m.opponentViews(seat),
		TopCard:        m.topCard(),
		Direction:      int(m.eng.Direction),
		Current:        int(m.eng.Current),
		SumDrawing:     int(m.eng.SumDrawing),
		LastPlayerDrew: m.eng.LastPlayerDrew,
	}
	if m.eng.DeclaredColor != engine.NoColor {
		view.DeclaredColor = colorName(m.eng.DeclaredColor)
	}
	for i := uint8(0); i < m.eng.FinishedLen; i++ {
		view.FinishedOrder = append(view.FinishedOrder, int(m.eng.FinishedOrder[i]))
	}
	return view
}
