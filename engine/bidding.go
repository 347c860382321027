package engine

import "fmt"

// BiddingState is one state of the bidding sub-automaton. Each state has a
// fixed statement source and audience; "call" states raise the bid, while
// "respond" states accept or pass on the current highest bid.
type BiddingState uint8

const (
	// BidMiddleCallsFore: middlehand calls to forehand.
	BidMiddleCallsFore BiddingState = iota
	// BidForeRespondsMiddle: forehand responds to middlehand's call.
	BidForeRespondsMiddle
	// BidRearCallsFore: rearhand calls to forehand.
	BidRearCallsFore
	// BidForeRespondsRear: forehand responds to rearhand's call.
	BidForeRespondsRear
	// BidRearCallsMiddle: rearhand calls to middlehand.
	BidRearCallsMiddle
	// BidMiddleRespondsRear: middlehand responds to rearhand's call.
	BidMiddleRespondsRear
	// BidForehand: forehand alone decides whether to play at all. This
	// happens when middlehand and rearhand pass directly.
	BidForehand
)

// Respond reports whether the state expects a response to a call rather
// than a call. The terminal BidForehand decision counts as a response.
func (s BiddingState) Respond() bool {
	switch s {
	case BidMiddleCallsFore, BidRearCallsFore, BidRearCallsMiddle:
		return false
	default:
		return true
	}
}

// Source returns the player currently making a statement.
func (s BiddingState) Source() Player {
	switch s {
	case BidMiddleCallsFore, BidMiddleRespondsRear:
		return Middlehand
	case BidForeRespondsMiddle, BidForeRespondsRear, BidForehand:
		return Forehand
	case BidRearCallsFore, BidRearCallsMiddle:
		return Rearhand
	default:
		panic(fmt.Sprintf("invalid bidding state %d", uint8(s)))
	}
}

// Target returns the audience of the statement. Panics for BidForehand,
// where the forehand is the only one left bidding.
func (s BiddingState) Target() Player {
	switch s {
	case BidMiddleCallsFore, BidRearCallsFore:
		return Forehand
	case BidForeRespondsMiddle, BidRearCallsMiddle:
		return Middlehand
	case BidForeRespondsRear, BidMiddleRespondsRear:
		return Rearhand
	case BidForehand:
		panic("the forehand is the only one left bidding")
	default:
		panic(fmt.Sprintf("invalid bidding state %d", uint8(s)))
	}
}

// biddingOutcome tags the result of a bidding transition.
type biddingOutcome uint8

const (
	biddingContinue biddingOutcome = iota
	biddingFinished
	biddingDraw
)

// BiddingResult is the outcome of one transition: bidding continues in State,
// finishes with Declarer, or all three players passed before any bid.
type BiddingResult struct {
	Outcome  biddingOutcome
	State    BiddingState
	Declarer Player
}

// Next evaluates the automaton transition after the source passed or not.
// anyBid reports whether any bid has been made yet; it decides whether
// rearhand passing on forehand hands the deal to forehand or leaves
// forehand free to decline.
func (s BiddingState) Next(passed, anyBid bool) BiddingResult {
	cont := func(next BiddingState) BiddingResult {
		return BiddingResult{Outcome: biddingContinue, State: next}
	}
	finished := func(declarer Player) BiddingResult {
		return BiddingResult{Outcome: biddingFinished, Declarer: declarer}
	}

	if passed {
		switch s {
		case BidMiddleCallsFore:
			return cont(BidRearCallsFore)
		case BidForeRespondsMiddle:
			return cont(BidRearCallsMiddle)
		case BidRearCallsFore:
			if anyBid {
				return finished(Forehand)
			}
			return cont(BidForehand)
		case BidForeRespondsRear:
			return finished(Rearhand)
		case BidRearCallsMiddle:
			return finished(Middlehand)
		case BidMiddleRespondsRear:
			return finished(Rearhand)
		case BidForehand:
			return BiddingResult{Outcome: biddingDraw}
		}
	} else {
		switch s {
		case BidMiddleCallsFore:
			return cont(BidForeRespondsMiddle)
		case BidForeRespondsMiddle:
			return cont(BidMiddleCallsFore)
		case BidRearCallsFore:
			return cont(BidForeRespondsRear)
		case BidForeRespondsRear:
			return cont(BidRearCallsFore)
		case BidRearCallsMiddle:
			return cont(BidMiddleRespondsRear)
		case BidMiddleRespondsRear:
			return cont(BidRearCallsMiddle)
		case BidForehand:
			return finished(Forehand)
		}
	}
	panic(fmt.Sprintf("invalid bidding state %d", uint8(s)))
}

func (s BiddingState) String() string {
	if s == BidForehand {
		return "only the forehand is left bidding"
	}
	verb := "should make a call to"
	if s.Respond() {
		verb = "should respond to"
	}
	return fmt.Sprintf("%v %s %v", s.Source(), verb, s.Target())
}
