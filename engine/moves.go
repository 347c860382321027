package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Move is a bit-packed move code. Its interpretation depends on the phase:
//
//	Card phases     bits 0-4 card index, bit 5 = Hidden sentinel
//	Bidding         0 = pass, 1 = accept, 18..264 = new bid
//	SkatDecision    0 = Hand, 1 = Pick
//	Declaring       Declaration bitfield (bits 0-8), bit 9 = Overbidden
type Move uint16

const (
	// MoveHidden is the placeholder for a card unobserved by the receiver.
	MoveHidden Move = 1 << 5

	// MovePass and MoveAccept are the bidding statements.
	MovePass   Move = 0
	MoveAccept Move = 1

	// MoveHand and MovePick are the Skat decision choices.
	MoveHand Move = 0
	MovePick Move = 1

	// MoveOverbidden is the synthetic declaration ending an overbid deal.
	MoveOverbidden Move = 1 << declBits
)

func init() {
	// Validate the bitfield layout once instead of scattering bit tricks:
	// card indices must fit below the Hidden sentinel, and the declaration
	// bitfield below the Overbidden sentinel.
	if NumCards > int(MoveHidden) {
		panic("card index overflows the Hidden sentinel bit")
	}
	top := NewNormal(ModeGrand, LevelOuvert)
	if Move(top) >= MoveOverbidden {
		panic("declaration bitfield overflows the Overbidden sentinel bit")
	}
	if !top.valid() || !DeclNullOuvertHand.valid() {
		panic("declaration encoding is inconsistent")
	}
}

// CardMove encodes a concrete card move.
func CardMove(c Card) Move { return Move(c) }

// PartialMove encodes a card slot: the card index, or the Hidden sentinel.
func PartialMove(pc PartialCard) Move {
	if pc.IsHidden() {
		return MoveHidden
	}
	return Move(pc)
}

// DeclarationMove encodes a declaration move.
func DeclarationMove(d Declaration) Move { return Move(d) }

// cardOf decodes a concrete card move.
func (m Move) cardOf() (Card, error) {
	if m >= Move(NumCards) {
		return 0, fmt.Errorf("%w: move %d is not a card", ErrInvalidMove, m)
	}
	return Card(m), nil
}

// partialOf decodes a card move that may be the Hidden placeholder.
func (m Move) partialOf() (PartialCard, error) {
	if m == MoveHidden {
		return HiddenCard, nil
	}
	c, err := m.cardOf()
	if err != nil {
		return 0, err
	}
	return Known(c), nil
}

// declarationOf decodes a declaration move; ok distinguishes a concrete
// declaration from the Overbidden sentinel.
func (m Move) declarationOf() (d Declaration, overbidden bool, err error) {
	if m == MoveOverbidden {
		return 0, true, nil
	}
	d = Declaration(m)
	if !d.valid() {
		return 0, false, fmt.Errorf("%w: move %d is not a declaration", ErrInvalidMove, m)
	}
	return d, false, nil
}

// FormatMove renders the move as text according to the current phase.
func (g *Game) FormatMove(m Move) (string, error) {
	switch g.Phase {
	case PhaseDealing, PhasePicking, PhasePutting:
		pc, err := m.partialOf()
		if err != nil {
			return "", err
		}
		return pc.String(), nil
	case PhaseBidding:
		switch m {
		case MovePass:
			return "pass", nil
		case MoveAccept:
			return "accept", nil
		default:
			return strconv.Itoa(int(m)), nil
		}
	case PhaseSkatDecision:
		if m == MoveHand {
			return "hand", nil
		}
		return "pick", nil
	case PhaseDeclaring:
		d, overbidden, err := m.declarationOf()
		if err != nil {
			return "", err
		}
		if overbidden {
			return "overbidden", nil
		}
		return d.String(), nil
	case PhaseRevealing, PhasePlaying:
		c, err := m.cardOf()
		if err != nil {
			return "", err
		}
		return c.String(), nil
	default:
		return "", fmt.Errorf("%w: no moves in phase %v", ErrInvalidState, g.Phase)
	}
}

// ParseMove parses move text according to the current phase. The grammar is
// case-insensitive; card tokens are <rank><suit> with "?" for Hidden.
func (g *Game) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	switch g.Phase {
	case PhaseDealing, PhasePicking, PhasePutting:
		if s == "?" {
			return MoveHidden, nil
		}
		c, err := ParseCard(s)
		if err != nil {
			return 0, err
		}
		return CardMove(c), nil
	case PhaseBidding:
		if strings.EqualFold(s, "pass") {
			return MovePass, nil
		}
		if strings.EqualFold(s, "accept") || strings.EqualFold(s, "yes") {
			return MoveAccept, nil
		}
		bid, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to parse bid: %v", ErrInvalidInput, err)
		}
		return Move(bid), nil
	case PhaseSkatDecision:
		if strings.EqualFold(s, "hand") {
			return MoveHand, nil
		}
		if strings.EqualFold(s, "pick") {
			return MovePick, nil
		}
		return 0, fmt.Errorf("%w: invalid Skat decision %q", ErrInvalidInput, s)
	case PhaseDeclaring:
		if strings.EqualFold(s, "overbidden") {
			return MoveOverbidden, nil
		}
		d, err := ParseDeclaration(s)
		if err != nil {
			return 0, err
		}
		return DeclarationMove(d), nil
	case PhaseRevealing, PhasePlaying:
		c, err := ParseCard(s)
		if err != nil {
			return 0, err
		}
		return CardMove(c), nil
	default:
		return 0, fmt.Errorf("%w: no moves in phase %v", ErrInvalidState, g.Phase)
	}
}
