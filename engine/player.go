package engine

import "fmt"

// Player is one of the three seats of a Skat deal.
type Player uint8

const (
	Forehand Player = iota
	Middlehand
	Rearhand
)

// NumPlayers is the number of playing seats.
const NumPlayers = 3

// Next returns the seat after p in playing order.
func (p Player) Next() Player {
	return (p + 1) % NumPlayers
}

// Others returns the two seats playing against p.
func (p Player) Others() [2]Player {
	return [2]Player{p.Next(), p.Next().Next()}
}

func (p Player) String() string {
	switch p {
	case Forehand:
		return "forehand"
	case Middlehand:
		return "middlehand"
	case Rearhand:
		return "rearhand"
	default:
		panic(fmt.Sprintf("invalid player %d", uint8(p)))
	}
}

// Actor identifies who may act: one of the three seats or the Environment,
// the chance source responsible for dealing and widow pickup. The
// Environment never occupies a playing seat.
type Actor uint8

const (
	ActorForehand Actor = iota
	ActorMiddlehand
	ActorRearhand
	Environment
)

// Actor returns the acting identity of the seat.
func (p Player) Actor() Actor { return Actor(p) }

// Seat returns the playing seat of the actor, or false for the Environment.
func (a Actor) Seat() (Player, bool) {
	if a >= Environment {
		return 0, false
	}
	return Player(a), true
}

func (a Actor) String() string {
	if a == Environment {
		return "environment"
	}
	if p, ok := a.Seat(); ok {
		return p.String()
	}
	panic(fmt.Sprintf("invalid actor %d", uint8(a)))
}
