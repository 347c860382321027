// internal/game/view.go
package game

import (
	"github.com/google/uuid"

	"skat/engine"
)

// ViewHand is one hand as seen by the observer, card slots rendered in move
// grammar with "?" for unknown slots.
type ViewHand struct {
	Seat  string   `json:"seat"`
	Cards []string `json:"cards"`
}

// View is the full deal state redacted to one observer's seat. Everything in
// it is legitimately known to that observer.
type View struct {
	TableID     uuid.UUID  `json:"tableId"`
	Seat        string     `json:"seat"`
	Phase       string     `json:"phase"`
	Hands       []ViewHand `json:"hands"`
	Widow       []string   `json:"widow"`
	Trick       []string   `json:"trick"`
	LastTrick   []string   `json:"lastTrick,omitempty"`
	Bid         int        `json:"bid,omitempty"`
	Declarer    string     `json:"declarer,omitempty"`
	Declaration string     `json:"declaration,omitempty"`
	HandGame    bool       `json:"handGame,omitempty"`
	ToMove      []string   `json:"toMove,omitempty"`
	LegalMoves  []string   `json:"legalMoves,omitempty"`

	DeclarerPoints int      `json:"declarerPoints"`
	TeamPoints     int      `json:"teamPoints"`
	Winners        []string `json:"winners,omitempty"`
	DeclarerScore  int      `json:"declarerScore"`
}

// buildView produces the observer's redacted view of the table's deal.
// Assumes the table lock is held.
func (t *Table) buildView(seat engine.Player) *View {
	g := t.Game.Clone()
	g.Redact([]engine.Player{seat})

	v := &View{
		TableID:        t.ID,
		Seat:           seat.String(),
		Phase:          g.Phase.String(),
		Widow:          renderSlots(g.Cards.Widow),
		Trick:          renderCards(g.Cards.Trick),
		DeclarerPoints: int(g.DeclarerPoints),
		TeamPoints:     int(g.TeamPoints),
		DeclarerScore:  int(g.DeclarerScore),
	}
	for p := engine.Player(0); p < engine.NumPlayers; p++ {
		v.Hands = append(v.Hands, ViewHand{
			Seat:  p.String(),
			Cards: renderSlots(g.Cards.Hands[p]),
		})
	}
	if g.Cards.LastTrick != nil {
		v.LastTrick = renderCards(g.Cards.LastTrick[:])
	}
	if g.Bid >= engine.MinimumBid {
		v.Bid = int(g.Bid)
	}
	switch g.Phase {
	case engine.PhaseDealing, engine.PhaseBidding:
	default:
		v.Declarer = g.Declarer.String()
		v.HandGame = g.HandGame
	}
	switch g.Phase {
	case engine.PhaseRevealing, engine.PhasePlaying:
		v.Declaration = g.Declaration.String()
	}
	for _, a := range g.ToMove() {
		v.ToMove = append(v.ToMove, a.String())
	}
	// Offer the observer their legal moves when it is their turn on the
	// redacted copy; the authoritative state still validates every move.
	if actors := g.ToMove(); len(actors) == 1 && actors[0] == seat.Actor() {
		for _, m := range g.LegalMoves() {
			s, err := g.FormatMove(m)
			if err != nil {
				continue
			}
			v.LegalMoves = append(v.LegalMoves, s)
		}
	}
	for _, w := range g.Winners {
		v.Winners = append(v.Winners, w.String())
	}
	return v
}

func renderSlots(slots []engine.PartialCard) []string {
	out := make([]string, len(slots))
	for i, pc := range slots {
		out[i] = pc.String()
	}
	return out
}

func renderCards(cards []engine.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
