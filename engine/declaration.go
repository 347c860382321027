package engine

import (
	"fmt"
	"strings"
)

// GameMode selects the trump scheme of a Normal declaration: one of the four
// color suits or Grand. The suit modes share their numeric values with the
// Suit constants.
type GameMode uint8

const (
	ModeDiamonds GameMode = GameMode(SuitDiamonds)
	ModeHearts   GameMode = GameMode(SuitHearts)
	ModeSpades   GameMode = GameMode(SuitSpades)
	ModeClubs    GameMode = GameMode(SuitClubs)
	ModeGrand    GameMode = 4
)

// NumModes is the number of candidate game modes for matador counting.
const NumModes = 5

// BaseValue returns the base contract value of the mode.
func (m GameMode) BaseValue() uint16 {
	if m == ModeGrand {
		return 24
	}
	return 9 + uint16(m)
}

func (m GameMode) String() string {
	switch m {
	case ModeDiamonds:
		return "diamonds"
	case ModeHearts:
		return "hearts"
	case ModeSpades:
		return "spades"
	case ModeClubs:
		return "clubs"
	case ModeGrand:
		return "grand"
	default:
		panic(fmt.Sprintf("invalid game mode %d", uint8(m)))
	}
}

// Level is the announcement level of a Normal declaration. The ordinal
// doubles as the level rank in the overbidding bound.
type Level uint8

const (
	LevelNormal Level = 1 + iota
	LevelHand
	LevelSchneider
	LevelSchwarz
	LevelOuvert
)

func (l Level) String() string {
	switch l {
	case LevelNormal:
		return ""
	case LevelHand:
		return "hand"
	case LevelSchneider:
		return "schneider"
	case LevelSchwarz:
		return "schwarz"
	case LevelOuvert:
		return "ouvert"
	default:
		panic(fmt.Sprintf("invalid level %d", uint8(l)))
	}
}

// Declaration is a contract announcement, packed into the same bitfield
// layout used by declaration moves: the four Null variants occupy the
// literal codes 0 to 3; Normal declarations set declNormalFlag and carry
// mode and level fields above it.
type Declaration uint16

const (
	DeclNull Declaration = iota
	DeclNullHand
	DeclNullOuvert
	DeclNullOuvertHand
)

const (
	declNormalFlag Declaration = 1 << 2
	declModeShift              = 3
	declLevelShift             = 6
	declFieldMask              = 0x7
	declBits                   = 9
)

// NewNormal constructs a Normal declaration from mode and level.
func NewNormal(mode GameMode, level Level) Declaration {
	return declNormalFlag |
		Declaration(mode)<<declModeShift |
		Declaration(level)<<declLevelShift
}

// IsNormal reports whether d is a Normal (color or Grand) declaration.
func (d Declaration) IsNormal() bool { return d&declNormalFlag != 0 }

// IsNull reports whether d is one of the four Null variants.
func (d Declaration) IsNull() bool { return !d.IsNormal() }

// Mode returns the game mode of a Normal declaration. The result is
// meaningless for Null declarations.
func (d Declaration) Mode() GameMode {
	return GameMode(d >> declModeShift & declFieldMask)
}

// Level returns the announcement level of a Normal declaration. The result
// is meaningless for Null declarations.
func (d Declaration) Level() Level {
	return Level(d >> declLevelShift & declFieldMask)
}

// valid reports whether d is a well-formed declaration encoding.
func (d Declaration) valid() bool {
	if d.IsNull() {
		return d <= DeclNullOuvertHand
	}
	if d&^(declNormalFlag|declFieldMask<<declModeShift|declFieldMask<<declLevelShift) != 0 {
		return false
	}
	return d.Mode() < NumModes && d.Level() >= LevelNormal && d.Level() <= LevelOuvert
}

// IsHand reports whether the contract is played without picking up the widow.
func (d Declaration) IsHand() bool {
	if d.IsNull() {
		return d == DeclNullHand || d == DeclNullOuvertHand
	}
	return d.Level() >= LevelHand
}

// IsOuvert reports whether the declarer's hand is revealed before play.
func (d Declaration) IsOuvert() bool {
	if d.IsNull() {
		return d == DeclNullOuvert || d == DeclNullOuvertHand
	}
	return d.Level() == LevelOuvert
}

// IsSchneider reports whether schneider is announced.
func (d Declaration) IsSchneider() bool {
	return d.IsNormal() && d.Level() >= LevelSchneider
}

// IsSchwarz reports whether schwarz is announced.
func (d Declaration) IsSchwarz() bool {
	return d.IsNormal() && d.Level() >= LevelSchwarz
}

// BaseValue returns the base contract value. Null variants have fixed
// outright values independent of the multiplier machinery.
func (d Declaration) BaseValue() uint16 {
	switch d {
	case DeclNull:
		return 23
	case DeclNullHand:
		return 35
	case DeclNullOuvert:
		return 46
	case DeclNullOuvertHand:
		return 59
	default:
		return d.Mode().BaseValue()
	}
}

// Allowed reports whether declaring d at the given accepted bid would not
// overbid. For Normal declarations the bound is the maximum value still
// achievable: (matadors + level rank + 2) * base value. Null contracts are
// bounded by their fixed value.
func (d Declaration) Allowed(bid uint16, m Matadors) bool {
	if d.IsNull() {
		return bid <= d.BaseValue()
	}
	bound := (uint16(m[d.Mode()]) + uint16(d.Level()) + 2) * d.BaseValue()
	return bid <= bound
}

// AllDeclarations returns every declaration consistent with the given Hand
// flag, in a stable order.
func AllDeclarations(hand bool) []Declaration {
	var out []Declaration
	if hand {
		out = append(out, DeclNullHand, DeclNullOuvertHand)
	} else {
		out = append(out, DeclNull, DeclNullOuvert)
	}
	for mode := GameMode(0); mode < NumModes; mode++ {
		if hand {
			for level := LevelHand; level <= LevelOuvert; level++ {
				out = append(out, NewNormal(mode, level))
			}
		} else {
			out = append(out, NewNormal(mode, LevelNormal))
		}
	}
	return out
}

// String renders the declaration in move grammar, e.g. "null ouvert hand",
// "hearts" or "grand schneider".
func (d Declaration) String() string {
	if d.IsNull() {
		s := "null"
		if d.IsOuvert() {
			s += " ouvert"
		}
		if d.IsHand() {
			s += " hand"
		}
		return s
	}
	s := d.Mode().String()
	if lvl := d.Level().String(); lvl != "" {
		s += " " + lvl
	}
	return s
}

// ParseDeclaration parses the textual declaration grammar case-insensitively:
// "null[ ouvert][ hand]" or "<mode>[ <level>]".
func ParseDeclaration(s string) (Declaration, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty declaration", ErrInvalidInput)
	}
	if fields[0] == "null" {
		ouvert, hand := false, false
		for _, f := range fields[1:] {
			switch f {
			case "ouvert":
				ouvert = true
			case "hand":
				hand = true
			default:
				return 0, fmt.Errorf("%w: unknown null modifier %q", ErrInvalidInput, f)
			}
		}
		switch {
		case ouvert && hand:
			return DeclNullOuvertHand, nil
		case ouvert:
			return DeclNullOuvert, nil
		case hand:
			return DeclNullHand, nil
		default:
			return DeclNull, nil
		}
	}

	var mode GameMode
	switch fields[0] {
	case "diamonds":
		mode = ModeDiamonds
	case "hearts":
		mode = ModeHearts
	case "spades":
		mode = ModeSpades
	case "clubs":
		mode = ModeClubs
	case "grand":
		mode = ModeGrand
	default:
		return 0, fmt.Errorf("%w: unknown game mode %q", ErrInvalidInput, fields[0])
	}
	level := LevelNormal
	if len(fields) > 1 {
		switch fields[1] {
		case "hand":
			level = LevelHand
		case "schneider":
			level = LevelSchneider
		case "schwarz":
			level = LevelSchwarz
		case "ouvert":
			level = LevelOuvert
		default:
			return 0, fmt.Errorf("%w: unknown level %q", ErrInvalidInput, fields[1])
		}
	}
	if len(fields) > 2 {
		return 0, fmt.Errorf("%w: trailing declaration tokens", ErrInvalidInput)
	}
	return NewNormal(mode, level), nil
}

// Matadors holds the per-candidate-mode matador count: the length of the
// unbroken top-trump run the declarer holds (or, when missing the Jack of
// clubs, is missing).
type Matadors [NumModes]uint8

// MatadorsFromCards computes the matador count for every candidate mode from
// the given fully known card set.
func MatadorsFromCards(cards []Card) Matadors {
	var held [NumCards]bool
	for _, c := range cards {
		held[c] = true
	}

	var m Matadors
	for mode := GameMode(0); mode < NumModes; mode++ {
		seq := trumpSequence(mode)
		with := held[seq[0]]
		count := uint8(0)
		for _, c := range seq {
			if held[c] != with {
				break
			}
			count++
		}
		m[mode] = count
	}
	return m
}

// trumpSequence returns the trump cards of the mode in descending order,
// starting at the Jack of clubs.
func trumpSequence(mode GameMode) []Card {
	seq := []Card{
		NewCard(RankJack, SuitClubs),
		NewCard(RankJack, SuitSpades),
		NewCard(RankJack, SuitHearts),
		NewCard(RankJack, SuitDiamonds),
	}
	if mode == ModeGrand {
		return seq
	}
	suit := uint8(mode)
	for _, rank := range [...]uint8{RankAce, Rank10, RankKing, RankQueen, Rank9, Rank8, Rank7} {
		seq = append(seq, NewCard(rank, suit))
	}
	return seq
}
