// Package engine implements the rules of a single deal of Skat.
//
// The package owns the authoritative game state, enumerates and validates
// legal moves, applies them, resolves the bidding, checks declared contracts
// for overbidding, and computes the final deal score. Hidden information is
// modelled explicitly so that a state can be redacted to what a single
// observer legitimately knows without breaking rule validation.
package engine

import (
	"fmt"
	"strings"
)

// Suit constants, ordered by ascending base value.
const (
	SuitDiamonds uint8 = 0
	SuitHearts   uint8 = 1
	SuitSpades   uint8 = 2
	SuitClubs    uint8 = 3
)

// NumSuits is the number of suits in the deck.
const NumSuits = 4

// Rank constants. The order below doubles as the relative strength of
// non-Jack cards in the trump ordering (Ace > Ten > King > Queen > 9 > 8 > 7).
const (
	Rank7     uint8 = 0
	Rank8     uint8 = 1
	Rank9     uint8 = 2
	RankJack  uint8 = 3
	RankQueen uint8 = 4
	RankKing  uint8 = 5
	Rank10    uint8 = 6
	RankAce   uint8 = 7
)

// NumRanks is the number of ranks in the deck.
const NumRanks = 8

// Card identifies one of the 32 cards by its stable index rank*4+suit.
type Card uint8

// NumCards is the size of the Skat deck.
const NumCards = NumRanks * NumSuits

// NewCard constructs a Card from rank and suit.
func NewCard(rank, suit uint8) Card {
	return Card(rank*NumSuits + suit)
}

// Rank returns the rank of the card.
func (c Card) Rank() uint8 { return uint8(c) / NumSuits }

// Suit returns the suit of the card.
func (c Card) Suit() uint8 { return uint8(c) % NumSuits }

// Points returns the trick point value of the card.
// The whole deck totals 120 points.
func (c Card) Points() uint8 {
	switch c.Rank() {
	case RankAce:
		return 11
	case Rank10:
		return 10
	case RankKing:
		return 4
	case RankQueen:
		return 3
	case RankJack:
		return 2
	default:
		return 0
	}
}

var suitLetters = [NumSuits]string{"D", "H", "S", "C"}
var rankTokens = [NumRanks]string{"7", "8", "9", "J", "Q", "K", "10", "A"}

// String renders the card as <rank><suit>, e.g. "10S" or "AC".
func (c Card) String() string {
	if uint8(c) >= NumCards {
		return "??"
	}
	return rankTokens[c.Rank()] + suitLetters[c.Suit()]
}

// ParseCard parses a card token of the form <rank><suit> case-insensitively,
// e.g. "10s", "jC" or "AH".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: card token %q too short", ErrInvalidInput, s)
	}
	suit := s[len(s)-1:]
	rank := s[:len(s)-1]
	var card Card
	found := false
	for r, rt := range rankTokens {
		if rank != rt {
			continue
		}
		for su, st := range suitLetters {
			if suit == st {
				card = NewCard(uint8(r), uint8(su))
				found = true
			}
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: invalid card token %q", ErrInvalidInput, s)
	}
	return card, nil
}

// CardClass describes how a card ranks under a declaration: it is either
// trump or belongs to a plain color suit.
type CardClass struct {
	Trump bool
	Suit  uint8 // valid only when Trump is false
}

// Class classifies the card under the given declaration. Under Normal and
// Grand declarations every Jack is trump; under a color declaration the
// declared suit is trump as well. Under Null declarations nothing is trump.
func (c Card) Class(d Declaration) CardClass {
	if d.IsNull() {
		return CardClass{Suit: c.Suit()}
	}
	if c.Rank() == RankJack {
		return CardClass{Trump: true}
	}
	if mode := d.Mode(); mode != ModeGrand && uint8(mode) == c.Suit() {
		return CardClass{Trump: true}
	}
	return CardClass{Suit: c.Suit()}
}

// nullStrength orders ranks for Null games: A > K > Q > J > 10 > 9 > 8 > 7.
var nullStrength = [NumRanks]uint8{0, 1, 2, 4, 5, 6, 3, 7}

// strength returns the relative strength of the card for comparisons within
// the same CardClass under the given declaration.
func (c Card) strength(d Declaration) uint8 {
	if d.IsNull() {
		return nullStrength[c.Rank()]
	}
	if c.Rank() == RankJack {
		// Jacks outrank all non-Jacks and order among themselves by suit.
		return NumRanks + c.Suit()
	}
	return c.Rank()
}

// beats reports whether the challenger card c wins over the current best b
// given the class led into the trick.
func (c Card) beats(b Card, lead CardClass, d Declaration) bool {
	cc, bc := c.Class(d), b.Class(d)
	if cc == bc {
		return c.strength(d) > b.strength(d)
	}
	if cc.Trump {
		return true
	}
	if bc.Trump {
		return false
	}
	// A card that is neither lead-class nor trump can never win.
	return cc == lead
}

// trickWinner returns the offset into trick of the winning card.
func trickWinner(trick []Card, d Declaration) int {
	lead := trick[0].Class(d)
	best := 0
	for i := 1; i < len(trick); i++ {
		if trick[i].beats(trick[best], lead, d) {
			best = i
		}
	}
	return best
}
