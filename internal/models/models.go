// Package models holds the wire-level representations shared by the match
// layer and the transports. Engine state never crosses the wire directly;
// everything clients see goes through these types.
package models

import "github.com/google/uuid"

// Card is the client-facing view of one physical card. ID is stable for the
// lifetime of a match; the same physical card keeps the same ID through
// hands, the table pile and reshuffles.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Color  string    `json:"color"`            // "red", "blue", "green", "yellow", "black"
	Digit  *int      `json:"digit,omitempty"`  // 0..9 for digit cards, absent otherwise
	Action string    `json:"action,omitempty"` // "skip", "reverse", "draw two", "wild", "draw four"
}

// Seat describes one of the four fixed seats at a table.
type Seat struct {
	Index    uint8     `json:"index"`
	Name     string    `json:"name"`
	IsBot    bool      `json:"isBot"`
	Provider string    `json:"provider,omitempty"` // decision provider for bot seats
	Model    string    `json:"model,omitempty"`    // model override for bot seats
	Ready    bool      `json:"ready"`
	UserID   uuid.UUID `json:"userId,omitempty"` // owning user for human seats
	ConnID   uuid.UUID `json:"-"`                // transport connection, not serialized
}

// Occupied reports whether the seat has been claimed by a human or a bot.
func (s *Seat) Occupied() bool {
	return s.IsBot || s.UserID != uuid.Nil
}
