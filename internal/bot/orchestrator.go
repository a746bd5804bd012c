package bot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Om-Tiwari/UNOArena/engine"
	"github.com/Om-Tiwari/UNOArena/internal/models"
)

// Mover produces move responses for a turn. Satisfied by *Client; tests
// substitute their own.
type Mover interface {
	RequestMove(ctx context.Context, req MoveRequest) (*MoveResponse, error)
}

// Orchestrator turns one bot seat's view of the table into a decision the
// table will accept. It never mutates state and never fails: every error
// path ends in the local fallback policy.
type Orchestrator struct {
	mover Mover
	log   logrus.FieldLogger
}

// NewOrchestrator builds an orchestrator around the given decision source.
func NewOrchestrator(mover Mover, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{mover: mover, log: log}
}

// Decide asks the decision service for a move and validates it. One attempt
// only: any transport failure, timeout, non-2xx, malformed body or illegal
// move yields the fallback decision instead.
func (o *Orchestrator) Decide(ctx context.Context, in TurnInput) Decision {
	resp, err := o.mover.RequestMove(ctx, buildMoveRequest(in))
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"seat":     in.SeatName,
			"provider": in.Provider,
		}).WithError(err).Warn("decision service failed, using fallback")
		return Fallback(in)
	}

	d, err := validateResponse(in, resp)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"seat":     in.SeatName,
			"provider": in.Provider,
			"action":   resp.Action,
		}).WithError(err).Warn("decision rejected, using fallback")
		return Fallback(in)
	}
	return d
}

func buildMoveRequest(in TurnInput) MoveRequest {
	cards := make([]models.Card, len(in.Hand))
	for i, hc := range in.Hand {
		cards[i] = hc.Wire
	}
	return MoveRequest{
		GameState: GameSnapshot{
			CurrentPlayer:  SeatView{Name: in.SeatName, Cards: len(in.Hand)},
			TableStack:     in.TableStack,
			OtherPlayers:   in.Others,
			Direction:      in.Direction,
			SumDrawing:     in.SumDrawing,
			LastPlayerDrew: in.LastPlayerDrew,
			GamePhase:      "playing",
		},
		PlayerCards: cards,
		Provider:    in.Provider,
		Model:       in.Model,
	}
}

// validateResponse re-checks the service's move against the live table. The
// service's own isValid flag is advisory and deliberately ignored.
func validateResponse(in TurnInput, resp *MoveResponse) (Decision, error) {
	provider := resp.Provider
	if provider == "" {
		provider = in.Provider
	}

	switch resp.Action {
	case "draw":
		return Decision{Draw: true, Provider: provider, Reasoning: resp.Reasoning}, nil

	case "play":
		id, err := uuid.Parse(resp.CardID)
		if err != nil {
			return Decision{}, fmt.Errorf("bad card id %q: %w", resp.CardID, err)
		}
		var played *HandCard
		for i := range in.Hand {
			if in.Hand[i].Wire.ID == id {
				played = &in.Hand[i]
				break
			}
		}
		if played == nil {
			return Decision{}, fmt.Errorf("card %s is not in hand", id)
		}
		if !engine.CanPlay(in.Top, played.Engine, in.LastPlayerDrew) {
			return Decision{}, fmt.Errorf("card %s is not playable on the current top", id)
		}
		if played.Engine.IsWildFamily() && !validColorName(resp.Color) {
			return Decision{}, fmt.Errorf("wild play needs a declared color, got %q", resp.Color)
		}
		return Decision{
			CardID:    id,
			Color:     resp.Color,
			Provider:  provider,
			Reasoning: resp.Reasoning,
		}, nil

	default:
		return Decision{}, fmt.Errorf("unknown action %q", resp.Action)
	}
}
