package engine

import (
	"errors"
	"testing"
)

// dealInOrder deals the whole deck in card index order.
func dealInOrder(t *testing.T, g *Game) {
	t.Helper()
	for c := Card(0); c < NumCards; c++ {
		if err := g.ApplyMove(Environment, CardMove(c)); err != nil {
			t.Fatalf("dealing %v: %v", c, err)
		}
	}
}

func TestDealing(t *testing.T) {
	g := NewGame()
	if g.Phase != PhaseDealing {
		t.Fatalf("fresh deal in phase %v", g.Phase)
	}
	if actors := g.ToMove(); len(actors) != 1 || actors[0] != Environment {
		t.Fatalf("ToMove = %v, want the environment", actors)
	}

	dealInOrder(t, g)
	if g.Phase != PhaseBidding {
		t.Fatalf("after dealing: phase %v, want bidding", g.Phase)
	}
	for p := Player(0); p < NumPlayers; p++ {
		if len(g.Cards.Hands[p]) != 10 {
			t.Errorf("%v holds %d cards, want 10", p, len(g.Cards.Hands[p]))
		}
	}
	if len(g.Cards.Widow) != WidowSize {
		t.Errorf("widow holds %d cards, want %d", len(g.Cards.Widow), WidowSize)
	}
	if g.Cards.Count() != NumCards {
		t.Errorf("Count = %d, want %d", g.Cards.Count(), NumCards)
	}
	if len(g.Cards.Unknown()) != 0 {
		t.Errorf("unplaced cards remain: %v", g.Cards.Unknown())
	}
}

func TestDealingRejectsDuplicates(t *testing.T) {
	g := NewGame()
	c := NewCard(RankAce, SuitClubs)
	if err := g.ApplyMove(Environment, CardMove(c)); err != nil {
		t.Fatalf("first deal: %v", err)
	}
	if err := g.ApplyMove(Environment, CardMove(c)); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("dealing %v twice: err = %v, want ErrInvalidMove", c, err)
	}
}

func TestDealingRejectsWrongActor(t *testing.T) {
	g := NewGame()
	err := g.ApplyMove(ActorForehand, CardMove(0))
	if !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("err = %v, want ErrInvalidPlayer", err)
	}
}

func TestDealTargetRotation(t *testing.T) {
	var counts [NumPlayers]int
	widow := 0
	for dealt := 0; dealt < NumCards; dealt++ {
		if p, toHand := dealTarget(dealt); toHand {
			counts[p]++
		} else {
			widow++
		}
	}
	for p, n := range counts {
		if n != 10 {
			t.Errorf("seat %d receives %d cards, want 10", p, n)
		}
	}
	if widow != WidowSize {
		t.Errorf("widow receives %d cards, want %d", widow, WidowSize)
	}
	// The first round deals three cards each, then the widow.
	if p, toHand := dealTarget(0); !toHand || p != Forehand {
		t.Error("dealing must start at forehand")
	}
	if _, toHand := dealTarget(9); toHand {
		t.Error("cards 10 and 11 go to the widow")
	}
}

func TestBiddingPhase(t *testing.T) {
	g := NewGame()
	dealInOrder(t, g)

	// Middlehand opens the bidding.
	if actors := g.ToMove(); actors[0] != ActorMiddlehand {
		t.Fatalf("ToMove = %v, want middlehand", actors)
	}
	if err := g.ApplyMove(ActorMiddlehand, Move(17)); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("bid below minimum: err = %v, want ErrInvalidMove", err)
	}
	if err := g.ApplyMove(ActorMiddlehand, Move(20)); err != nil {
		t.Fatalf("bid 20: %v", err)
	}
	if err := g.ApplyMove(ActorForehand, MoveAccept); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := g.ApplyMove(ActorMiddlehand, Move(20)); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("re-bidding the held bid: err = %v, want ErrInvalidMove", err)
	}
	if err := g.ApplyMove(ActorMiddlehand, MovePass); err != nil {
		t.Fatalf("middlehand pass: %v", err)
	}
	if err := g.ApplyMove(ActorRearhand, MovePass); err != nil {
		t.Fatalf("rearhand pass: %v", err)
	}

	if g.Phase != PhaseSkatDecision || g.Declarer != Forehand || g.Bid != 20 {
		t.Fatalf("after bidding: phase %v, declarer %v, bid %d", g.Phase, g.Declarer, g.Bid)
	}
}

func TestBiddingAllPassFinishesDraw(t *testing.T) {
	g := NewGame()
	dealInOrder(t, g)
	for _, a := range []Actor{ActorMiddlehand, ActorRearhand, ActorForehand} {
		if err := g.ApplyMove(a, MovePass); err != nil {
			t.Fatalf("%v pass: %v", a, err)
		}
	}
	if g.Phase != PhaseFinished || len(g.Winners) != 0 {
		t.Fatalf("after all pass: phase %v, winners %v", g.Phase, g.Winners)
	}
	if len(g.ToMove()) != 0 {
		t.Error("a finished deal has no actor to move")
	}
}

func TestSkatDecisionAndPicking(t *testing.T) {
	g := NewGame()
	dealInOrder(t, g)
	g.Phase = PhaseSkatDecision
	g.Declarer = Rearhand
	g.Bid = 18

	if err := g.ApplyMove(ActorRearhand, MovePick); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if g.Phase != PhasePicking || g.HandGame {
		t.Fatalf("after pick: phase %v, hand %v", g.Phase, g.HandGame)
	}

	// The environment moves the widow cards top-down into the hand.
	for i := 0; i < WidowSize; i++ {
		moves := g.LegalMoves()
		if len(moves) != 1 {
			t.Fatalf("picking legal moves = %v, want exactly the top card", moves)
		}
		if err := g.ApplyMove(Environment, moves[0]); err != nil {
			t.Fatalf("pickup %d: %v", i, err)
		}
	}
	if g.Phase != PhasePutting {
		t.Fatalf("after pickup: phase %v", g.Phase)
	}
	if len(g.Cards.Hands[Rearhand]) != 12 {
		t.Fatalf("declarer holds %d cards, want 12", len(g.Cards.Hands[Rearhand]))
	}

	// Putting two cards back restores hand and widow sizes.
	for i := 0; i < WidowSize; i++ {
		moves := g.LegalMoves()
		if err := g.ApplyMove(Rearhand.Actor(), moves[0]); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	if g.Phase != PhaseDeclaring {
		t.Fatalf("after putting: phase %v", g.Phase)
	}
	if len(g.Cards.Hands[Rearhand]) != 10 || len(g.Cards.Widow) != WidowSize {
		t.Fatalf("hand %d, widow %d after putting",
			len(g.Cards.Hands[Rearhand]), len(g.Cards.Widow))
	}
}

func TestSkatDecisionHand(t *testing.T) {
	g := NewGame()
	dealInOrder(t, g)
	g.Phase = PhaseSkatDecision
	g.Declarer = Forehand
	g.Bid = 18

	if err := g.ApplyMove(ActorForehand, MoveHand); err != nil {
		t.Fatalf("hand: %v", err)
	}
	if g.Phase != PhaseDeclaring || !g.HandGame {
		t.Fatalf("after hand decision: phase %v, hand %v", g.Phase, g.HandGame)
	}
	for _, m := range g.LegalMoves() {
		d, overbidden, err := m.declarationOf()
		if err != nil {
			t.Fatalf("legal declaring move %v: %v", m, err)
		}
		if !overbidden && !d.IsHand() {
			t.Errorf("non-hand contract %v offered in a hand game", d)
		}
	}
}

func TestDeclaringRejectsOverbid(t *testing.T) {
	g := &Game{Phase: PhaseDeclaring, Declarer: Forehand, Bid: 100}
	// With 1 everywhere: no contract reaches 100.
	hand := []Card{NewCard(RankJack, SuitClubs)}
	for s := uint8(0); s < NumSuits; s++ {
		hand = append(hand,
			NewCard(Rank7, s), NewCard(Rank8, s))
	}
	for _, c := range hand {
		g.Cards.GiveHand(Forehand, Known(c))
	}
	g.Cards.GiveWidow(Known(NewCard(RankAce, SuitClubs)))
	g.Cards.GiveWidow(Known(NewCard(RankAce, SuitSpades)))

	moves := g.LegalMoves()
	if len(moves) != 1 || moves[0] != MoveOverbidden {
		t.Fatalf("legal moves = %v, want only the overbidden declaration", moves)
	}
	err := g.ApplyMove(ActorForehand, DeclarationMove(DeclNull))
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("declaring null at bid 100: err = %v, want ErrInvalidMove", err)
	}

	if err := g.ApplyMove(ActorForehand, MoveOverbidden); err != nil {
		t.Fatalf("overbidden: %v", err)
	}
	if g.Phase != PhaseFinished || g.DeclarerScore != -200 {
		t.Fatalf("after overbidden: phase %v, score %d", g.Phase, g.DeclarerScore)
	}
	want := Forehand.Others()
	if len(g.Winners) != 2 || g.Winners[0] != want[0] || g.Winners[1] != want[1] {
		t.Fatalf("winners = %v, want %v", g.Winners, want)
	}
}

func TestRevealing(t *testing.T) {
	g := &Game{Phase: PhaseDeclaring, Declarer: Middlehand, Bid: 18, HandGame: true}
	hand := []Card{
		NewCard(Rank7, SuitDiamonds),
		NewCard(Rank8, SuitDiamonds),
		NewCard(Rank9, SuitDiamonds),
	}
	for _, c := range hand {
		g.Cards.GiveHand(Middlehand, Known(c))
	}

	if err := g.ApplyMove(ActorMiddlehand, DeclarationMove(DeclNullOuvertHand)); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if g.Phase != PhaseRevealing {
		t.Fatalf("after ouvert declaration: phase %v", g.Phase)
	}

	// The declarer discloses their hand slot by slot, in order.
	for i, c := range hand {
		moves := g.LegalMoves()
		if len(moves) != 1 || moves[0] != CardMove(c) {
			t.Fatalf("reveal %d: legal moves = %v, want [%v]", i, moves, c)
		}
		if err := g.ApplyMove(ActorMiddlehand, CardMove(c)); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}
	if g.Phase != PhasePlaying || g.Turn != Forehand {
		t.Fatalf("after revealing: phase %v, turn %v", g.Phase, g.Turn)
	}
}

func TestRevealingRedactedHand(t *testing.T) {
	// From an outside observer's view the declarer's slots are Hidden and
	// each reveal binds a concrete card to the next slot.
	g := &Game{Phase: PhaseRevealing, Declarer: Middlehand, Bid: 18,
		HandGame: true, Declaration: DeclNullOuvertHand}
	g.Cards.GiveHand(Middlehand, HiddenCard)
	g.Cards.GiveHand(Middlehand, HiddenCard)

	c := NewCard(RankAce, SuitClubs)
	if err := g.ApplyMove(ActorMiddlehand, CardMove(c)); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if g.Cards.Hands[Middlehand][0] != Known(c) {
		t.Fatalf("slot 0 = %v after reveal, want %v", g.Cards.Hands[Middlehand][0], c)
	}
	// The bound card is no longer a candidate for the remaining slot.
	if err := g.ApplyMove(ActorMiddlehand, CardMove(c)); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("revealing %v twice: err = %v, want ErrInvalidMove", c, err)
	}
}

// playTrick applies three playing moves starting at the current turn.
func playTrick(t *testing.T, g *Game, cards ...Card) {
	t.Helper()
	for _, c := range cards {
		if err := g.ApplyMove(g.Turn.Actor(), CardMove(c)); err != nil {
			t.Fatalf("playing %v: %v", c, err)
		}
	}
}

func TestPlayingFinalTrickScoring(t *testing.T) {
	// Diamonds, declarer forehand holding with 1. The last trick decides
	// the game: 73 declarer points win a plain contract worth 18.
	g := &Game{
		Phase:          PhasePlaying,
		Declarer:       Forehand,
		Declaration:    NewNormal(ModeDiamonds, LevelNormal),
		Bid:            18,
		Turn:           Forehand,
		DeclarerPoints: 50,
		TeamPoints:     47,
	}
	g.Cards.GiveHand(Forehand, Known(NewCard(RankJack, SuitClubs)))
	g.Cards.GiveHand(Middlehand, Known(NewCard(RankAce, SuitHearts)))
	g.Cards.GiveHand(Rearhand, Known(NewCard(Rank10, SuitHearts)))
	g.Cards.GiveWidow(Known(NewCard(Rank7, SuitDiamonds)))
	g.Cards.GiveWidow(Known(NewCard(Rank8, SuitDiamonds)))
	for s := uint8(0); s < NumSuits; s++ {
		if s == SuitDiamonds {
			continue
		}
		g.Cards.Played[Forehand] = append(g.Cards.Played[Forehand],
			NewCard(Rank7, s), NewCard(Rank8, s), NewCard(Rank9, s))
	}

	playTrick(t, g,
		NewCard(RankJack, SuitClubs),
		NewCard(RankAce, SuitHearts),
		NewCard(Rank10, SuitHearts))

	if g.Phase != PhaseFinished {
		t.Fatalf("after the last trick: phase %v", g.Phase)
	}
	if g.DeclarerPoints != 73 || g.TeamPoints != 47 {
		t.Fatalf("points = %d/%d, want 73/47", g.DeclarerPoints, g.TeamPoints)
	}
	// With 1, plain game: (1+1) * 9 = 18.
	if g.DeclarerScore != 18 {
		t.Fatalf("score = %d, want 18", g.DeclarerScore)
	}
	if len(g.Winners) != 1 || g.Winners[0] != Forehand {
		t.Fatalf("winners = %v, want the declarer", g.Winners)
	}
}

func TestPlayingGrandHandScoring(t *testing.T) {
	// Grand Hand, declarer forehand with 3: the club, spade and heart
	// Jacks but not the diamond Jack. 77 declarer points win without
	// schneider, so the multiplier is 3 matadors + 1 + hand = 5.
	g := &Game{
		Phase:          PhasePlaying,
		Declarer:       Forehand,
		Declaration:    NewNormal(ModeGrand, LevelHand),
		HandGame:       true,
		Bid:            48,
		Turn:           Forehand,
		DeclarerPoints: 54,
		TeamPoints:     43,
	}
	g.Cards.GiveHand(Forehand, Known(NewCard(RankJack, SuitClubs)))
	g.Cards.GiveHand(Middlehand, Known(NewCard(RankAce, SuitSpades)))
	g.Cards.GiveHand(Rearhand, Known(NewCard(Rank10, SuitSpades)))
	g.Cards.GiveWidow(Known(NewCard(Rank7, SuitDiamonds)))
	g.Cards.GiveWidow(Known(NewCard(Rank8, SuitDiamonds)))
	g.Cards.Played[Forehand] = []Card{
		NewCard(RankJack, SuitSpades),
		NewCard(RankJack, SuitHearts),
		NewCard(Rank7, SuitHearts), NewCard(Rank8, SuitHearts),
		NewCard(Rank7, SuitSpades), NewCard(Rank8, SuitSpades),
		NewCard(Rank7, SuitClubs), NewCard(Rank8, SuitClubs),
	}

	playTrick(t, g,
		NewCard(RankJack, SuitClubs),
		NewCard(RankAce, SuitSpades),
		NewCard(Rank10, SuitSpades))

	if g.Phase != PhaseFinished {
		t.Fatalf("after the last trick: phase %v", g.Phase)
	}
	if g.DeclarerPoints != 77 || g.TeamPoints != 43 {
		t.Fatalf("points = %d/%d, want 77/43", g.DeclarerPoints, g.TeamPoints)
	}
	// With 3, hand: (3+1+1) * 24 = 120.
	if g.DeclarerScore != 120 {
		t.Fatalf("score = %d, want 120", g.DeclarerScore)
	}
	if len(g.Winners) != 1 || g.Winners[0] != Forehand {
		t.Fatalf("winners = %v, want the declarer", g.Winners)
	}
}

func TestPlayingNullLoss(t *testing.T) {
	// The declarer takes a trick containing points at null and
	// immediately loses twice the contract value.
	g := &Game{
		Phase:       PhasePlaying,
		Declarer:    Forehand,
		Declaration: DeclNull,
		Bid:         18,
		Turn:        Forehand,
	}
	g.Cards.GiveHand(Forehand, Known(NewCard(RankAce, SuitHearts)))
	g.Cards.GiveHand(Forehand, Known(NewCard(Rank7, SuitSpades)))
	g.Cards.GiveHand(Middlehand, Known(NewCard(RankKing, SuitHearts)))
	g.Cards.GiveHand(Middlehand, Known(NewCard(Rank8, SuitSpades)))
	g.Cards.GiveHand(Rearhand, Known(NewCard(Rank7, SuitHearts)))
	g.Cards.GiveHand(Rearhand, Known(NewCard(Rank9, SuitSpades)))

	playTrick(t, g,
		NewCard(RankAce, SuitHearts),
		NewCard(RankKing, SuitHearts),
		NewCard(Rank7, SuitHearts))

	if g.Phase != PhaseFinished {
		t.Fatalf("null game not finished after the declarer took points")
	}
	if g.DeclarerScore != -46 {
		t.Fatalf("score = %d, want -46", g.DeclarerScore)
	}
	want := Forehand.Others()
	if len(g.Winners) != 2 || g.Winners[0] != want[0] || g.Winners[1] != want[1] {
		t.Fatalf("winners = %v, want %v", g.Winners, want)
	}
}

func TestPlayingFollowEnforced(t *testing.T) {
	g := &Game{
		Phase:       PhasePlaying,
		Declarer:    Forehand,
		Declaration: NewNormal(ModeHearts, LevelNormal),
		Bid:         18,
		Turn:        Forehand,
	}
	g.Cards.GiveHand(Forehand, Known(NewCard(RankAce, SuitSpades)))
	g.Cards.GiveHand(Middlehand, Known(NewCard(RankKing, SuitSpades)))
	g.Cards.GiveHand(Middlehand, Known(NewCard(RankAce, SuitClubs)))

	playTrick(t, g, NewCard(RankAce, SuitSpades))
	err := g.ApplyMove(ActorMiddlehand, CardMove(NewCard(RankAce, SuitClubs)))
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("discarding while holding the lead suit: err = %v, want ErrInvalidMove", err)
	}
	if err := g.ApplyMove(ActorMiddlehand, CardMove(NewCard(RankKing, SuitSpades))); err != nil {
		t.Fatalf("following suit: %v", err)
	}
}

func TestTranslateMove(t *testing.T) {
	g := NewGame()
	c := NewCard(RankAce, SuitClubs)

	// The first card goes to forehand: only forehand sees it.
	if m := g.TranslateMove(Environment, CardMove(c), ActorForehand); m != CardMove(c) {
		t.Errorf("receiver's view = %v, want the card", m)
	}
	if m := g.TranslateMove(Environment, CardMove(c), ActorMiddlehand); m != MoveHidden {
		t.Errorf("bystander's view = %v, want hidden", m)
	}
	if m := g.TranslateMove(Environment, CardMove(c), Environment); m != CardMove(c) {
		t.Errorf("environment's view = %v, want the card", m)
	}

	// Putting is invisible to everyone but the declarer.
	g = &Game{Phase: PhasePutting, Declarer: Forehand}
	if m := g.TranslateMove(ActorForehand, CardMove(c), ActorRearhand); m != MoveHidden {
		t.Errorf("putting view = %v, want hidden", m)
	}
	if m := g.TranslateMove(ActorForehand, CardMove(c), ActorForehand); m != CardMove(c) {
		t.Errorf("the actor's own view = %v, want the card", m)
	}

	// Playing moves are public.
	g = &Game{Phase: PhasePlaying, Declarer: Forehand, Turn: Forehand}
	if m := g.TranslateMove(ActorForehand, CardMove(c), ActorMiddlehand); m != CardMove(c) {
		t.Errorf("playing view = %v, want the card", m)
	}
}

func TestRedact(t *testing.T) {
	g := NewGame()
	dealInOrder(t, g)

	view := g.Clone()
	view.Redact([]Player{Middlehand})

	for _, pc := range view.Cards.Hands[Middlehand] {
		if pc.IsHidden() {
			t.Fatal("the observer's own hand must stay known")
		}
	}
	for _, p := range []Player{Forehand, Rearhand} {
		for _, pc := range view.Cards.Hands[p] {
			if !pc.IsHidden() {
				t.Fatalf("%v's hand visible after redaction", p)
			}
		}
	}
	for _, pc := range view.Cards.Widow {
		if !pc.IsHidden() {
			t.Fatal("widow visible after redaction")
		}
	}

	// Redaction is idempotent.
	twice := view.Clone()
	twice.Redact([]Player{Middlehand})
	for p := range twice.Cards.Hands {
		for i, pc := range twice.Cards.Hands[p] {
			if pc != view.Cards.Hands[p][i] {
				t.Fatal("double redaction changed the view")
			}
		}
	}

	// The original stays untouched.
	for _, pc := range g.Cards.Hands[Forehand] {
		if pc.IsHidden() {
			t.Fatal("redacting a clone mutated the original")
		}
	}
}

func TestRedactedViewPlayable(t *testing.T) {
	// A redacted state still enumerates legal moves; hidden slots expand
	// to every unplaced card.
	g := NewGame()
	dealInOrder(t, g)
	g.Phase = PhasePlaying
	g.Declarer = Forehand
	g.Declaration = NewNormal(ModeClubs, LevelNormal)
	g.Turn = Middlehand

	view := g.Clone()
	view.Redact([]Player{Forehand})
	moves := view.LegalMoves()
	// Only forehand's 10 cards are placed, so 22 candidates remain for the
	// hidden hand slots.
	if len(moves) != 22 {
		t.Fatalf("redacted legal moves = %d, want 22", len(moves))
	}
	for _, m := range moves {
		if err := view.ValidateMove(ActorMiddlehand, m); err != nil {
			t.Errorf("enumerated move %v fails validation: %v", m, err)
		}
	}
}

func TestRandomPlayout(t *testing.T) {
	// A pseudo-random full playout must reach a terminal state without a
	// rejected move and conserve all 32 cards throughout.
	seed := uint64(0x9e3779b97f4a7c15)
	next := func() uint64 {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		return seed
	}

	for round := 0; round < 20; round++ {
		g := NewGame()
		for steps := 0; g.Phase != PhaseFinished; steps++ {
			if steps > 2000 {
				t.Fatalf("round %d: no terminal state after %d steps", round, steps)
			}
			actors := g.ToMove()
			if len(actors) != 1 {
				t.Fatalf("round %d: ToMove = %v in phase %v", round, actors, g.Phase)
			}
			m, err := g.RandomMove(next())
			if err != nil {
				t.Fatalf("round %d: RandomMove in phase %v: %v", round, g.Phase, err)
			}
			if err := g.ApplyMove(actors[0], m); err != nil {
				t.Fatalf("round %d: applying %v in phase %v: %v", round, m, g.Phase, err)
			}
			if g.Phase != PhaseDealing && g.Cards.Count() != NumCards {
				t.Fatalf("round %d: %d cards tracked, want %d", round, g.Cards.Count(), NumCards)
			}
		}
		if len(g.Winners) == 0 && g.Bid >= MinimumBid {
			t.Errorf("round %d: bid %d accepted but the deal is drawn", round, g.Bid)
		}
		if len(g.ToMove()) != 0 || len(g.LegalMoves()) != 0 {
			t.Errorf("round %d: finished deal still offers moves", round)
		}
	}
}

func TestGameCloneIndependence(t *testing.T) {
	g := NewGame()
	dealInOrder(t, g)
	clone := g.Clone()
	if err := clone.ApplyMove(ActorMiddlehand, Move(18)); err != nil {
		t.Fatalf("bid on clone: %v", err)
	}
	if g.Bid == clone.Bid {
		t.Error("mutating the clone changed the original bid")
	}
	clone.Cards.Hands[Forehand][0] = HiddenCard
	if g.Cards.Hands[Forehand][0].IsHidden() {
		t.Error("clone hands share memory with the original")
	}
}
