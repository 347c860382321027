package engine

import (
	"fmt"
	"strings"
)

// Phase is the top-level state of a deal.
type Phase uint8

const (
	// PhaseDealing: the Environment deals 32 cards one at a time.
	PhaseDealing Phase = iota
	// PhaseBidding: the bidding automaton determines the declarer.
	PhaseBidding
	// PhaseSkatDecision: the declarer decides whether to pick up the widow.
	PhaseSkatDecision
	// PhasePicking: the Environment hands the widow cards to the declarer.
	PhasePicking
	// PhasePutting: the declarer discards two cards back into the widow.
	PhasePutting
	// PhaseDeclaring: the declarer announces the contract.
	PhaseDeclaring
	// PhaseRevealing: the declarer discloses their hand before an Ouvert game.
	PhaseRevealing
	// PhasePlaying: the trick-taking game.
	PhasePlaying
	// PhaseFinished: terminal; holds the winner set.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseBidding:
		return "bidding"
	case PhaseSkatDecision:
		return "skat decision"
	case PhasePicking:
		return "picking"
	case PhasePutting:
		return "putting"
	case PhaseDeclaring:
		return "declaring"
	case PhaseRevealing:
		return "revealing"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

const (
	// MinimumBid is the lowest possible bid.
	MinimumBid uint16 = 18
	// MaximumBid is the highest possible bid.
	MaximumBid uint16 = 264
	// pointsWinning: the declarer wins a Normal game with at least this
	// many trick points.
	pointsWinning uint8 = 61
	// pointsSchneider: a party is schneider with this many points or less.
	pointsSchneider uint8 = 30
)

// Game is the authoritative state of one Skat deal. It is mutated only by
// ApplyMove; every other operation treats it as read-only. Fields suffixed
// with their phase are meaningful only while that phase is active.
type Game struct {
	Cards       CardStore
	Bid         uint16
	Declarer    Player
	Declaration Declaration
	// HandGame records the Skat decision before a declaration exists.
	HandGame bool

	Phase Phase
	// Bidding is the automaton state during PhaseBidding.
	Bidding BiddingState
	// RevealIndex is the next hand slot to disclose during PhaseRevealing.
	RevealIndex int
	// Turn is the player to move during PhasePlaying.
	Turn Player
	// DeclarerPoints and TeamPoints are the running trick point tallies
	// during PhasePlaying.
	DeclarerPoints uint8
	TeamPoints     uint8

	// Winners is the set of winning players once finished; empty means a
	// draw. DeclarerScore is the declarer's signed deal score.
	Winners       []Player
	DeclarerScore int16
}

// NewGame creates the state of a fresh deal, ready for dealing.
func NewGame() *Game {
	return &Game{
		Phase: PhaseDealing,
		Bid:   MinimumBid - 1,
	}
}

// Clone returns a deep copy sharing no mutable memory with the original, so
// speculative futures can be explored independently.
func (g *Game) Clone() *Game {
	out := *g
	out.Cards = g.Cards.Clone()
	out.Winners = append([]Player(nil), g.Winners...)
	return &out
}

// hasDeclarer reports whether the deal has a declarer at this stage.
func (g *Game) hasDeclarer() bool {
	switch g.Phase {
	case PhaseDealing, PhaseBidding, PhaseFinished:
		return false
	default:
		return true
	}
}

// hasDeclaration reports whether a contract has been declared.
func (g *Game) hasDeclaration() bool {
	switch g.Phase {
	case PhaseRevealing, PhasePlaying:
		return true
	default:
		return false
	}
}

// ToMove returns the actors that must move next. The slice is empty once
// the deal is finished.
func (g *Game) ToMove() []Actor {
	switch g.Phase {
	case PhaseDealing, PhasePicking:
		return []Actor{Environment}
	case PhaseBidding:
		return []Actor{g.Bidding.Source().Actor()}
	case PhaseSkatDecision, PhasePutting, PhaseDeclaring, PhaseRevealing:
		return []Actor{g.Declarer.Actor()}
	case PhasePlaying:
		return []Actor{g.Turn.Actor()}
	default:
		return nil
	}
}

// dealTarget returns the hand receiving the next dealt card, or false for
// the widow. dealt is the number of cards dealt so far. The rotation deals
// 3-4-3 to each seat with the widow after the first round.
func dealTarget(dealt int) (Player, bool) {
	switch {
	case dealt <= 2, 11 <= dealt && dealt <= 14, 23 <= dealt && dealt <= 25:
		return Forehand, true
	case 3 <= dealt && dealt <= 5, 15 <= dealt && dealt <= 18, 26 <= dealt && dealt <= 28:
		return Middlehand, true
	case 6 <= dealt && dealt <= 8, 19 <= dealt && dealt <= 22, 29 <= dealt && dealt <= 31:
		return Rearhand, true
	case dealt == 9 || dealt == 10:
		return 0, false
	default:
		panic(fmt.Sprintf("dealt too many cards: %d", dealt))
	}
}

// calculateMatadors computes the matadors for the declarer from their hand,
// including the widow unless playing a Hand game. Returns false if any
// relevant slot is still Hidden.
func (g *Game) calculateMatadors() (Matadors, bool) {
	known, hidden := g.Cards.knownHand(g.Declarer)
	if hidden {
		return Matadors{}, false
	}
	if !g.HandGame {
		for _, pc := range g.Cards.Widow {
			c, ok := pc.Card()
			if !ok {
				return Matadors{}, false
			}
			known = append(known, c)
		}
	}
	return MatadorsFromCards(known), true
}

// LegalMoves enumerates the legal moves of the current phase for the actor
// returned by ToMove. Whenever relevant slot content is unknown, every
// globally-undealt card is among the candidates, since the true constraint
// cannot be determined.
func (g *Game) LegalMoves() []Move {
	switch g.Phase {
	case PhaseDealing:
		return cardMoves(g.Cards.Unknown())
	case PhaseBidding:
		moves := []Move{MovePass}
		if g.Bidding.Respond() {
			return append(moves, MoveAccept)
		}
		for bid := max(g.Bid+1, MinimumBid); bid <= MaximumBid; bid++ {
			moves = append(moves, Move(bid))
		}
		return moves
	case PhaseSkatDecision:
		return []Move{MoveHand, MovePick}
	case PhasePicking:
		if len(g.Cards.Widow) == 0 {
			return nil
		}
		top := g.Cards.Widow[len(g.Cards.Widow)-1]
		if c, ok := top.Card(); ok {
			return []Move{CardMove(c)}
		}
		return cardMoves(g.Cards.Unknown())
	case PhasePutting:
		known, hidden := g.Cards.knownHand(g.Declarer)
		moves := cardMoves(known)
		if hidden {
			moves = append(moves, cardMoves(g.Cards.Unknown())...)
		}
		return moves
	case PhaseDeclaring:
		matadors, ok := g.calculateMatadors()
		var moves []Move
		for _, d := range AllDeclarations(g.HandGame) {
			if !ok || d.Allowed(g.Bid, matadors) {
				moves = append(moves, DeclarationMove(d))
			}
		}
		// With unknown matadors the ceiling cannot be checked, so an
		// overbidden outcome stays possible too.
		if !ok || len(moves) == 0 {
			moves = append(moves, MoveOverbidden)
		}
		return moves
	case PhaseRevealing:
		hand := g.Cards.Hands[g.Declarer]
		if g.RevealIndex >= len(hand) {
			return nil
		}
		if c, ok := hand[g.RevealIndex].Card(); ok {
			return []Move{CardMove(c)}
		}
		return cardMoves(g.Cards.Unknown())
	case PhasePlaying:
		return cardMoves(g.Cards.Allowed(g.Turn, g.Declaration))
	default:
		return nil
	}
}

func cardMoves(cards []Card) []Move {
	moves := make([]Move, 0, len(cards))
	for _, c := range cards {
		moves = append(moves, CardMove(c))
	}
	return moves
}

// RandomMove returns a uniformly random legal move for the current phase.
func (g *Game) RandomMove(seed uint64) (Move, error) {
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return 0, fmt.Errorf("%w: no legal moves in phase %v", ErrInvalidState, g.Phase)
	}
	return moves[seed%uint64(len(moves))], nil
}

// checkActor validates the acting identity for the current phase.
func (g *Game) checkActor(actor Actor) error {
	var want Actor
	switch g.Phase {
	case PhaseDealing, PhasePicking:
		want = Environment
	case PhaseBidding:
		want = g.Bidding.Source().Actor()
	case PhaseSkatDecision, PhasePutting, PhaseDeclaring, PhaseRevealing:
		want = g.Declarer.Actor()
	case PhasePlaying:
		want = g.Turn.Actor()
	default:
		return fmt.Errorf("%w: the deal is finished", ErrInvalidState)
	}
	if actor != want {
		return fmt.Errorf("%w: %v must move in phase %v, not %v",
			ErrInvalidPlayer, want, g.Phase, actor)
	}
	return nil
}

// ValidateMove checks a candidate move without applying it.
func (g *Game) ValidateMove(actor Actor, m Move) error {
	if err := g.checkActor(actor); err != nil {
		return err
	}

	switch g.Phase {
	case PhaseDealing:
		pc, err := m.partialOf()
		if err != nil {
			return err
		}
		if c, ok := pc.Card(); ok && g.Cards.Contains(c) {
			return fmt.Errorf("%w: card %v has already been dealt", ErrInvalidMove, c)
		}
	case PhaseBidding:
		if g.Bidding.Respond() {
			if m > MoveAccept {
				return fmt.Errorf("%w: invalid bidding response %d", ErrInvalidMove, m)
			}
		} else if m != MovePass {
			bid := uint16(m)
			if bid <= g.Bid || bid < MinimumBid || bid > MaximumBid {
				return fmt.Errorf("%w: invalid bid %d at highest bid %d", ErrInvalidMove, bid, g.Bid)
			}
		}
	case PhaseSkatDecision:
		if m > MovePick {
			return fmt.Errorf("%w: invalid Skat decision %d", ErrInvalidMove, m)
		}
	case PhasePicking:
		pc, err := m.partialOf()
		if err != nil {
			return err
		}
		if len(g.Cards.Widow) == 0 {
			return fmt.Errorf("%w: no card in the widow to pick up", ErrInvalidState)
		}
		c, ok := pc.Card()
		if !ok {
			break
		}
		top := g.Cards.Widow[len(g.Cards.Widow)-1]
		if topCard, known := top.Card(); known {
			if c != topCard {
				return fmt.Errorf("%w: %v is not the card to pick up", ErrInvalidMove, c)
			}
		} else if g.Cards.Contains(c) {
			return fmt.Errorf("%w: card %v is already at another place", ErrInvalidMove, c)
		}
	case PhasePutting:
		pc, err := m.partialOf()
		if err != nil {
			return err
		}
		hand := g.Cards.Hands[g.Declarer]
		if len(hand) == 0 {
			return fmt.Errorf("%w: declarer's hand is empty", ErrInvalidState)
		}
		c, ok := pc.Card()
		if !ok {
			break
		}
		known, hidden := g.Cards.knownHand(g.Declarer)
		if containsCard(known, c) {
			break
		}
		if !hidden {
			return fmt.Errorf("%w: card %v is not in the declarer's hand", ErrInvalidMove, c)
		}
		if g.Cards.Contains(c) {
			return fmt.Errorf("%w: card %v is already at another place", ErrInvalidMove, c)
		}
	case PhaseDeclaring:
		d, overbidden, err := m.declarationOf()
		if err != nil {
			return err
		}
		matadors, ok := g.calculateMatadors()
		if overbidden {
			if !ok {
				break
			}
			for _, cand := range AllDeclarations(g.HandGame) {
				if cand.Allowed(g.Bid, matadors) {
					return fmt.Errorf("%w: not actually overbidden", ErrInvalidMove)
				}
			}
			break
		}
		if d.IsHand() != g.HandGame {
			if d.IsHand() {
				return fmt.Errorf("%w: cannot declare Hand after picking up the widow", ErrInvalidMove)
			}
			return fmt.Errorf("%w: a Hand game must be declared", ErrInvalidMove)
		}
		if ok && !d.Allowed(g.Bid, matadors) {
			return fmt.Errorf("%w: declaring %v would overbid at %d", ErrInvalidMove, d, g.Bid)
		}
	case PhaseRevealing:
		c, err := m.cardOf()
		if err != nil {
			return err
		}
		hand := g.Cards.Hands[g.Declarer]
		if g.RevealIndex >= len(hand) {
			return fmt.Errorf("%w: cannot reveal card %d as it does not exist", ErrInvalidState, g.RevealIndex)
		}
		if target, known := hand[g.RevealIndex].Card(); known {
			if c != target {
				return fmt.Errorf("%w: %v is not the card at slot %d", ErrInvalidMove, c, g.RevealIndex)
			}
		} else if g.Cards.Contains(c) {
			return fmt.Errorf("%w: card %v is already at another place", ErrInvalidMove, c)
		}
	case PhasePlaying:
		c, err := m.cardOf()
		if err != nil {
			return err
		}
		if !containsCard(g.Cards.Allowed(g.Turn, g.Declaration), c) {
			return fmt.Errorf("%w: not allowed to play %v", ErrInvalidMove, c)
		}
	default:
		return fmt.Errorf("%w: the deal is finished", ErrInvalidState)
	}
	return nil
}

func containsCard(cards []Card, c Card) bool {
	for _, cand := range cards {
		if cand == c {
			return true
		}
	}
	return false
}

// ApplyMove validates the move and, if legal, applies it to the state.
// Validation happens entirely before any mutation commits.
func (g *Game) ApplyMove(actor Actor, m Move) error {
	if err := g.ValidateMove(actor, m); err != nil {
		return err
	}

	switch g.Phase {
	case PhaseDealing:
		pc, _ := m.partialOf()
		dealt := g.Cards.Count()
		if target, toHand := dealTarget(dealt); toHand {
			g.Cards.GiveHand(target, pc)
		} else {
			g.Cards.GiveWidow(pc)
		}
		if dealt+1 >= NumCards {
			g.Phase = PhaseBidding
			g.Bidding = BidMiddleCallsFore
		}
	case PhaseBidding:
		anyBid := g.Bid >= MinimumBid
		var result BiddingResult
		switch m {
		case MovePass:
			result = g.Bidding.Next(true, anyBid)
		case MoveAccept:
			result = g.Bidding.Next(false, anyBid)
		default:
			g.Bid = uint16(m)
			result = g.Bidding.Next(false, anyBid)
		}
		switch result.Outcome {
		case biddingContinue:
			g.Bidding = result.State
		case biddingFinished:
			g.Declarer = result.Declarer
			g.Phase = PhaseSkatDecision
		case biddingDraw:
			g.Phase = PhaseFinished
			g.Winners = nil
		}
	case PhaseSkatDecision:
		if m == MoveHand {
			g.HandGame = true
			g.Phase = PhaseDeclaring
		} else {
			g.Phase = PhasePicking
		}
	case PhasePicking:
		pc, _ := m.partialOf()
		g.Cards.Widow = g.Cards.Widow[:len(g.Cards.Widow)-1]
		g.Cards.GiveHand(g.Declarer, pc)
		if len(g.Cards.Widow) == 0 {
			g.Phase = PhasePutting
		}
	case PhasePutting:
		pc, _ := m.partialOf()
		if err := g.Cards.Take(g.Declarer, pc); err != nil {
			return err
		}
		g.Cards.GiveWidow(pc)
		if len(g.Cards.Widow) >= WidowSize {
			g.Phase = PhaseDeclaring
		}
	case PhaseDeclaring:
		d, overbidden, _ := m.declarationOf()
		if overbidden {
			g.finishOverbidden()
			break
		}
		g.Declaration = d
		if d.IsOuvert() {
			g.Phase = PhaseRevealing
			g.RevealIndex = 0
		} else {
			g.Phase = PhasePlaying
			g.Turn = Forehand
		}
	case PhaseRevealing:
		c, _ := m.cardOf()
		g.Cards.Hands[g.Declarer][g.RevealIndex] = Known(c)
		g.RevealIndex++
		if g.RevealIndex >= len(g.Cards.Hands[g.Declarer]) {
			g.Phase = PhasePlaying
			g.Turn = Forehand
		}
	case PhasePlaying:
		c, _ := m.cardOf()
		if err := g.Cards.Take(g.Turn, Known(c)); err != nil {
			return err
		}
		g.Cards.Trick = append(g.Cards.Trick, c)
		g.Turn = g.Turn.Next()
		if len(g.Cards.Trick) < TrickSize {
			break
		}
		g.resolveTrick()
	}
	return nil
}

// resolveTrick settles a completed trick: determines the winner, adds its
// points to the winning party, archives the trick, and ends the deal if its
// termination condition is met.
func (g *Game) resolveTrick() {
	offset := g.Cards.TrickWinner(g.Declaration)
	// Turn has wrapped around to the trick's leader.
	leader := g.Turn
	winner := leader
	for i := 0; i < offset; i++ {
		winner = winner.Next()
	}

	var points uint8
	for _, c := range g.Cards.Trick {
		points += c.Points()
	}
	if winner == g.Declarer {
		g.DeclarerPoints += points
	} else {
		g.TeamPoints += points
	}

	g.Cards.ArchiveTrick(leader)
	g.Turn = winner

	nullLost := g.Declaration.IsNull() && g.DeclarerPoints > 0
	schwarzBroken := g.Declaration.IsSchwarz() && g.TeamPoints > 0
	handsEmpty := true
	for p := range g.Cards.Hands {
		if len(g.Cards.Hands[p]) > 0 {
			handsEmpty = false
		}
	}
	if nullLost || schwarzBroken || handsEmpty {
		g.finishPlaying()
	}
}

// finishPlaying computes the final deal value and enters PhaseFinished.
func (g *Game) finishPlaying() {
	g.DeclarerScore = g.declarerScore()
	g.Phase = PhaseFinished
	if g.DeclarerScore > 0 {
		g.Winners = []Player{g.Declarer}
	} else {
		others := g.Declarer.Others()
		g.Winners = others[:]
	}
}

// finishOverbidden ends the deal after an Overbidden declaration: the
// non-declarer pair wins and the declarer pays twice the accepted bid.
func (g *Game) finishOverbidden() {
	g.DeclarerScore = -2 * int16(g.Bid)
	g.Phase = PhaseFinished
	others := g.Declarer.Others()
	g.Winners = others[:]
}

// declarerScore computes the declarer's signed score per the deal's
// outcome. Null contracts pay their fixed value, doubled against the
// declarer on loss. Normal contracts multiply the base value and double
// against the declarer on loss, under-bid, or a missed announcement.
func (g *Game) declarerScore() int16 {
	if g.Declaration.IsNull() {
		value := int16(g.Declaration.BaseValue())
		if g.DeclarerPoints > 0 {
			return -2 * value
		}
		return value
	}

	won := g.DeclarerPoints >= pointsWinning
	loserPoints := g.DeclarerPoints
	if won {
		loserPoints = g.TeamPoints
	}
	schneider := loserPoints <= pointsSchneider
	schwarz := loserPoints == 0
	schneiderAnnounced := g.Declaration.IsSchneider()
	schwarzAnnounced := g.Declaration.IsSchwarz()

	// Count matadors from the cards the declarer actually held: their
	// played cards plus the known widow slots.
	cards := append([]Card(nil), g.Cards.Played[g.Declarer]...)
	for _, pc := range g.Cards.Widow {
		if c, ok := pc.Card(); ok {
			cards = append(cards, c)
		}
	}
	matadors := MatadorsFromCards(cards)[g.Declaration.Mode()]

	multiplier := int16(1) + int16(matadors)
	if g.Declaration.IsHand() {
		multiplier++
	}
	if schneider || schneiderAnnounced {
		multiplier++
	}
	if schneiderAnnounced {
		multiplier++
	}
	if schwarz || schwarzAnnounced {
		multiplier++
	}
	if schwarzAnnounced {
		multiplier++
	}
	if g.Declaration.IsOuvert() {
		multiplier++
	}

	value := int16(g.Declaration.BaseValue()) * multiplier
	bid := int16(g.Bid)
	if won && (!schneiderAnnounced || schneider) && (!schwarzAnnounced || schwarz) && value >= bid {
		return value
	}
	if bid > value {
		value = bid
	}
	return -2 * value
}

// Redact restricts the state to what the given observers legitimately know:
// all other hands and the entire widow become Hidden. Typically called on a
// Clone; the redacted copy stays independently playable.
func (g *Game) Redact(observers []Player) {
	var keep [NumPlayers]bool
	for _, p := range observers {
		keep[p] = true
	}
	g.Cards.Redact(keep)
}

// TranslateMove converts a move just applied by actor into the form the
// given observer is allowed to learn. Concrete deal and pickup cards
// directed at other players, and all putting cards, are replaced by the
// Hidden placeholder. Must be called before ApplyMove advances the phase.
func (g *Game) TranslateMove(actor Actor, m Move, observer Actor) Move {
	if actor == observer || observer == Environment {
		return m
	}
	seat, ok := observer.Seat()
	if !ok {
		return m
	}
	switch g.Phase {
	case PhaseDealing:
		if target, toHand := dealTarget(g.Cards.Count()); toHand && target == seat {
			return m
		}
		return MoveHidden
	case PhasePicking:
		if g.Declarer == seat {
			return m
		}
		return MoveHidden
	case PhasePutting:
		return MoveHidden
	default:
		return m
	}
}

// String renders a human-readable summary of the deal state.
func (g *Game) String() string {
	var b strings.Builder
	for p := Player(0); p < NumPlayers; p++ {
		fmt.Fprintf(&b, "%v: %s\n", p, joinSlots(g.Cards.Hands[p]))
	}
	fmt.Fprintf(&b, "widow: %s\n", joinSlots(g.Cards.Widow))
	if len(g.Cards.Trick) > 0 {
		fmt.Fprintf(&b, "trick: %s\n", joinCards(g.Cards.Trick))
	}
	if g.Bid >= MinimumBid {
		fmt.Fprintf(&b, "highest bid: %d\n", g.Bid)
	}
	if g.hasDeclarer() {
		fmt.Fprintf(&b, "%v is declarer\n", g.Declarer)
	}
	if g.hasDeclaration() {
		fmt.Fprintf(&b, "playing %v\n", g.Declaration)
	} else if g.HandGame && g.hasDeclarer() {
		b.WriteString("going to be a Hand game\n")
	}
	switch g.Phase {
	case PhaseBidding:
		fmt.Fprintf(&b, "bidding: %v", g.Bidding)
	case PhaseRevealing:
		fmt.Fprintf(&b, "declarer is revealing card %d next", g.RevealIndex)
	case PhasePlaying:
		fmt.Fprintf(&b, "it is %v's turn (declarer %d, team %d points)",
			g.Turn, g.DeclarerPoints, g.TeamPoints)
	case PhaseFinished:
		if len(g.Winners) == 0 {
			b.WriteString("draw")
		} else {
			names := make([]string, len(g.Winners))
			for i, p := range g.Winners {
				names[i] = p.String()
			}
			fmt.Fprintf(&b, "%s won", strings.Join(names, " and "))
		}
	default:
		b.WriteString(g.Phase.String())
	}
	return b.String()
}

func joinSlots(slots []PartialCard) string {
	parts := make([]string, len(slots))
	for i, pc := range slots {
		parts[i] = pc.String()
	}
	return strings.Join(parts, " ")
}

func joinCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
