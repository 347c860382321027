package engine

import "fmt"

// PartialCard is a card slot whose content may be unobserved by the current
// viewer. It is either Hidden or a known Card; a Hidden slot is never
// conflated with an absent one.
type PartialCard uint8

// HiddenCard marks a slot whose card identity is unknown to this state.
const HiddenCard PartialCard = NumCards

// Known wraps a concrete card into a slot value.
func Known(c Card) PartialCard { return PartialCard(c) }

// Card returns the slot's card and true, or false for a Hidden slot.
func (pc PartialCard) Card() (Card, bool) {
	if pc == HiddenCard {
		return 0, false
	}
	return Card(pc), true
}

// IsHidden reports whether the slot content is unknown.
func (pc PartialCard) IsHidden() bool { return pc == HiddenCard }

func (pc PartialCard) String() string {
	if c, ok := pc.Card(); ok {
		return c.String()
	}
	return "?"
}

// WidowSize is the number of cards set aside during dealing.
const WidowSize = 2

// TrickSize is the number of cards in a completed trick.
const TrickSize = NumPlayers

// CardStore tracks the location of every card of the deal: the three hands
// and the widow as partial-knowledge slots, the in-progress trick, the last
// completed trick, and the cards each player has played into tricks. Once
// dealing completes the locations together account for all 32 cards and no
// concrete card ever appears in two locations.
type CardStore struct {
	Hands     [NumPlayers][]PartialCard
	Widow     []PartialCard
	Trick     []Card
	LastTrick *[TrickSize]Card
	Played    [NumPlayers][]Card
}

// GiveHand appends a slot to the player's hand.
func (cs *CardStore) GiveHand(p Player, pc PartialCard) {
	cs.Hands[p] = append(cs.Hands[p], pc)
}

// GiveWidow appends a slot to the widow.
func (cs *CardStore) GiveWidow(pc PartialCard) {
	cs.Widow = append(cs.Widow, pc)
}

// Take removes a slot from the player's hand. If pc is Hidden, every slot of
// the hand is first marked Hidden, since the removed card's identity is being
// disclosed elsewhere and prior certainty collapses. A slot exactly equal to
// pc is removed if present; otherwise one Hidden slot stands in; otherwise
// the card is not available to this player. Removal shifts the remaining
// slots so hand order is preserved for index-addressed reveals.
func (cs *CardStore) Take(p Player, pc PartialCard) error {
	hand := cs.Hands[p]
	if pc.IsHidden() {
		for i := range hand {
			hand[i] = HiddenCard
		}
	}
	idx := -1
	for i, slot := range hand {
		if slot == pc {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, slot := range hand {
			if slot.IsHidden() {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: card %v not available to %v", ErrInvalidMove, pc, p)
	}
	cs.Hands[p] = append(hand[:idx], hand[idx+1:]...)
	return nil
}

// Redact marks every hand slot of players outside keep, and the entire
// widow, as Hidden. Redaction is one-way; only the controlled reveal paths
// turn Hidden slots back into known ones.
func (cs *CardStore) Redact(keep [NumPlayers]bool) {
	for p := range cs.Hands {
		if keep[p] {
			continue
		}
		for i := range cs.Hands[p] {
			cs.Hands[p][i] = HiddenCard
		}
	}
	for i := range cs.Widow {
		cs.Widow[i] = HiddenCard
	}
}

// Count returns the number of card slots under management. During dealing
// this equals the number of cards dealt so far; after dealing it stays at 32
// since played cards remain tracked per player.
func (cs *CardStore) Count() int {
	n := len(cs.Widow) + len(cs.Trick)
	for p := range cs.Hands {
		n += len(cs.Hands[p]) + len(cs.Played[p])
	}
	return n
}

// seen marks every known card currently placed somewhere.
func (cs *CardStore) seen() [NumCards]bool {
	var seen [NumCards]bool
	mark := func(pc PartialCard) {
		if c, ok := pc.Card(); ok {
			seen[c] = true
		}
	}
	for p := range cs.Hands {
		for _, pc := range cs.Hands[p] {
			mark(pc)
		}
		for _, c := range cs.Played[p] {
			seen[c] = true
		}
	}
	for _, pc := range cs.Widow {
		mark(pc)
	}
	for _, c := range cs.Trick {
		seen[c] = true
	}
	if cs.LastTrick != nil {
		for _, c := range cs.LastTrick {
			seen[c] = true
		}
	}
	return seen
}

// Unknown returns every card not known to be placed anywhere, in index
// order. These are the candidates for any Hidden slot.
func (cs *CardStore) Unknown() []Card {
	seen := cs.seen()
	var out []Card
	for c := Card(0); c < NumCards; c++ {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether the concrete card is known to be placed anywhere.
func (cs *CardStore) Contains(c Card) bool {
	return cs.seen()[c]
}

// knownHand returns the known cards of the player's hand and whether any
// slot is Hidden.
func (cs *CardStore) knownHand(p Player) (known []Card, hidden bool) {
	for _, pc := range cs.Hands[p] {
		if c, ok := pc.Card(); ok {
			known = append(known, c)
		} else {
			hidden = true
		}
	}
	return known, hidden
}

// Allowed returns the cards the player may legally play into the current
// trick under the declaration. When leading, any held card is playable. When
// following, cards of the lead class and trump must be played if held;
// otherwise any held card. If any hand slot is Hidden the true constraint
// cannot be determined, so every globally-undealt card is offered as well.
func (cs *CardStore) Allowed(p Player, d Declaration) []Card {
	known, hidden := cs.knownHand(p)
	var out []Card
	if len(cs.Trick) == 0 {
		out = known
	} else {
		lead := cs.Trick[0].Class(d)
		var follow []Card
		for _, c := range known {
			if cls := c.Class(d); cls == lead || cls.Trump {
				follow = append(follow, c)
			}
		}
		if len(follow) > 0 {
			out = follow
		} else {
			out = known
		}
	}
	if hidden {
		out = append(out, cs.Unknown()...)
	}
	return out
}

// TrickWinner returns the offset of the winning card within the completed
// trick.
func (cs *CardStore) TrickWinner(d Declaration) int {
	return trickWinner(cs.Trick, d)
}

// ArchiveTrick records the completed trick as the last trick, attributing
// each card to the player who played it, starting from leader.
func (cs *CardStore) ArchiveTrick(leader Player) {
	var last [TrickSize]Card
	copy(last[:], cs.Trick)
	cs.LastTrick = &last
	p := leader
	for _, c := range cs.Trick {
		cs.Played[p] = append(cs.Played[p], c)
		p = p.Next()
	}
	cs.Trick = nil
}

// Clone returns a deep copy sharing no memory with the original.
func (cs *CardStore) Clone() CardStore {
	out := CardStore{
		Widow: append([]PartialCard(nil), cs.Widow...),
		Trick: append([]Card(nil), cs.Trick...),
	}
	for p := range cs.Hands {
		out.Hands[p] = append([]PartialCard(nil), cs.Hands[p]...)
		out.Played[p] = append([]Card(nil), cs.Played[p]...)
	}
	if cs.LastTrick != nil {
		last := *cs.LastTrick
		out.LastTrick = &last
	}
	return out
}
