package engine

// Color constants — packed into bits 4–6 of Card.
const (
	ColorRed    uint8 = 0
	ColorBlue   uint8 = 1
	ColorGreen  uint8 = 2
	ColorYellow uint8 = 3
	ColorBlack  uint8 = 4
)

// NoColor marks the absence of a declared color.
const NoColor uint8 = 0xFF

// Face constants — packed into bits 0–3 of Card. Faces 0–9 are the digits.
const (
	FaceSkip     uint8 = 10
	FaceReverse  uint8 = 11
	FaceDrawTwo  uint8 = 12
	FaceWild     uint8 = 13
	FaceDrawFour uint8 = 14
)

// Card is a packed uint16: bits 0–3 face, bits 4–6 color, bits 8–15 the
// physical deck slot (0–107). The slot distinguishes the two printed copies
// of each face, so a Card is a stable identity for one physical card no
// matter which pile it sits in.
type Card uint16

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFFFF

// NewCard constructs a Card from its deck slot, color and face.
func NewCard(slot uint8, color, face uint8) Card {
	return Card(uint16(slot)<<8 | uint16(color&0x07)<<4 | uint16(face&0x0F))
}

// Slot returns the physical deck slot (bits 8–15).
func (c Card) Slot() uint8 { return uint8(c >> 8) }

// Color returns the color bits (4–6). Wild-family cards are ColorBlack.
func (c Card) Color() uint8 { return uint8(c>>4) & 0x07 }

// Face returns the face bits (0–3): a digit 0–9 or one of the Face constants.
func (c Card) Face() uint8 { return uint8(c) & 0x0F }

// IsDigit reports whether the card carries a digit 0–9.
func (c Card) IsDigit() bool { return c.Face() <= 9 }

// Digit returns the digit value. Only meaningful when IsDigit is true.
func (c Card) Digit() uint8 { return c.Face() }

// IsAction reports whether the card is an action card (skip, reverse,
// draw two, wild, draw four).
func (c Card) IsAction() bool { return c != EmptyCard && c.Face() >= FaceSkip }

// IsDrawFamily reports whether playing the card adds to the forced-draw
// accumulator (draw two, draw four).
func (c Card) IsDrawFamily() bool {
	f := c.Face()
	return c != EmptyCard && (f == FaceDrawTwo || f == FaceDrawFour)
}

// IsWildFamily reports whether the card is printed black (wild, draw four).
func (c Card) IsWildFamily() bool {
	f := c.Face()
	return c != EmptyCard && (f == FaceWild || f == FaceDrawFour)
}

// DrawPenalty returns the forced-draw contribution of the card: 2 for draw
// two, 4 for draw four, 0 otherwise.
func (c Card) DrawPenalty() uint8 {
	switch c.Face() {
	case FaceDrawTwo:
		return 2
	case FaceDrawFour:
		return 4
	}
	return 0
}

// buildDeck writes the full 108-card deck into dst in canonical order and
// returns the number of cards written. Per color: one 0, two each of 1–9,
// two skips, two reverses, two draw twos; plus four wilds and four draw
// fours. Slots are assigned sequentially so every physical card is unique.
func buildDeck(dst *[DeckSize]Card) uint8 {
	slot := uint8(0)
	put := func(color, face uint8) {
		dst[slot] = NewCard(slot, color, face)
		slot++
	}
	for color := ColorRed; color <= ColorYellow; color++ {
		put(color, 0)
		for digit := uint8(1); digit <= 9; digit++ {
			put(color, digit)
			put(color, digit)
		}
		for _, face := range [3]uint8{FaceSkip, FaceReverse, FaceDrawTwo} {
			put(color, face)
			put(color, face)
		}
	}
	for i := 0; i < 4; i++ {
		put(ColorBlack, FaceWild)
	}
	for i := 0; i < 4; i++ {
		put(ColorBlack, FaceDrawFour)
	}
	return slot
}
