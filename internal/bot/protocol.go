// Package bot decides moves for bot seats. It asks the external decision
// service first and falls back to a deterministic local policy whenever the
// service fails, times out, or returns a move the table would reject.
package bot

import (
	"github.com/google/uuid"

	"github.com/Om-Tiwari/UNOArena/engine"
	"github.com/Om-Tiwari/UNOArena/internal/models"
)

// SeatView is the redacted view of one opponent: name and card count only.
type SeatView struct {
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// GameSnapshot is the redacted table state sent to the decision service.
// TableStack lists the table pile top-first.
type GameSnapshot struct {
	CurrentPlayer  SeatView      `json:"currentPlayer"`
	TableStack     []models.Card `json:"tableStack"`
	OtherPlayers   []SeatView    `json:"otherPlayers"`
	Direction      int           `json:"direction"`
	SumDrawing     int           `json:"sumDrawing"`
	LastPlayerDrew bool          `json:"lastPlayerDrew"`
	GamePhase      string        `json:"gamePhase"`
}

// MoveRequest is the decision service's /move request body.
type MoveRequest struct {
	GameState   GameSnapshot  `json:"gameState"`
	PlayerCards []models.Card `json:"playerCards"`
	Provider    string        `json:"provider"`
	Model       string        `json:"model,omitempty"`
}

// MoveResponse is the decision service's /move response body. IsValid is the
// service's own legality opinion; the orchestrator never trusts it and
// re-validates every play locally.
type MoveResponse struct {
	Action            string `json:"action"` // "play" or "draw"
	CardID            string `json:"card_id,omitempty"`
	Color             string `json:"color,omitempty"`
	Reasoning         string `json:"reasoning,omitempty"`
	IsValid           bool   `json:"isValid"`
	ValidationMessage string `json:"validationMessage,omitempty"`
	Provider          string `json:"provider"`
	Model             string `json:"model"`
}

// HandCard pairs the wire and engine views of one card in the bot's hand.
type HandCard struct {
	Wire   models.Card
	Engine engine.Card
}

// TurnInput is everything the orchestrator needs to decide one bot turn.
type TurnInput struct {
	SeatName       string
	Provider       string
	Model          string
	Hand           []HandCard
	Top            engine.Card // engine view of the table top, EmptyCard if none
	TableStack     []models.Card
	Others         []SeatView
	Direction      int
	SumDrawing     int
	LastPlayerDrew bool
}

// Decision is a validated bot move, ready to feed back into the table.
type Decision struct {
	Draw      bool
	CardID    uuid.UUID // physical card to play when Draw is false
	Color     string    // declared color for wild-family plays
	Provider  string    // who produced the move; "fallback" for the local policy
	Reasoning string
}

// FallbackProvider marks decisions produced by the local policy.
const FallbackProvider = "fallback"
