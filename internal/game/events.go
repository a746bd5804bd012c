package game

import "github.com/Om-Tiwari/UNOArena/internal/models"

// EventType tags the events a match publishes to its observers.
type EventType string

const (
	EventPlayersChanged EventType = "players_changed" // public: seat roster changed
	EventGameInit       EventType = "game_init"       // private: a seat's opening view
	EventMove           EventType = "move"            // one completed turn
	EventFinishGame     EventType = "finish_game"     // public: final seat ordering
)

// BroadcastSeat marks an event as visible to every seat.
const BroadcastSeat = -1

// Event is one match notification. TargetSeat scopes visibility: transports
// must deliver seat-targeted events only to that seat's connection.
type Event struct {
	Type       EventType `json:"type"`
	TargetSeat int       `json:"-"`

	Seats  []models.Seat `json:"seats,omitempty"`  // players_changed
	View   *TableView    `json:"view,omitempty"`   // game_init
	Move   *MoveEvent    `json:"move,omitempty"`   // move
	Finish *FinishEvent  `json:"finish,omitempty"` // finish_game
}

// TableView is the redacted table state as one seat sees it: its own hand in
// full, every other seat reduced to a card count.
type TableView struct {
	Seat           int            `json:"seat"`
	Hand           []models.Card  `json:"hand"`
	Others         []OpponentView `json:"others"`
	TopCard        *models.Card   `json:"topCard,omitempty"`
	DeclaredColor  string         `json:"declaredColor,omitempty"`
	Direction      int            `json:"direction"`
	Current        int            `json:"current"`
	SumDrawing     int            `json:"sumDrawing"`
	LastPlayerDrew bool           `json:"lastPlayerDrew"`
	FinishedOrder  []int          `json:"finishedOrder,omitempty"`
}

// OpponentView is the public face of a seat: name and card count.
type OpponentView struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// MoveEvent describes one completed turn. The public copy carries the drawn
// card count only; the actor's private copy also carries the card details.
type MoveEvent struct {
	PreviousActor int           `json:"previousActor"`
	NextActor     int           `json:"nextActor"`
	Drew          bool          `json:"drew"`
	Card          *models.Card  `json:"card,omitempty"`
	Color         string        `json:"color,omitempty"` // declared color on wild-family plays
	DrawCount     int           `json:"drawCount,omitempty"`
	DrawnCards    []models.Card `json:"drawnCards,omitempty"`
	Provider      string        `json:"provider,omitempty"` // decision source for bot moves
	Reasoning     string        `json:"reasoning,omitempty"`
	Finished      bool          `json:"finished,omitempty"` // the actor emptied its hand
}

// FinishEvent carries the final ordering, winner first: the finishing seats
// themselves plus their indices.
type FinishEvent struct {
	OrderedSeats []int         `json:"orderedSeats"`
	Seats        []models.Seat `json:"seats"`
}
