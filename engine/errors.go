package engine

import "errors"

// Sentinel errors forming the caller-facing error taxonomy. All engine
// operations return errors wrapping exactly one of these; none of them
// mutate state on failure.
//
// Violations of internal structural invariants (an out-of-range actor index,
// querying the bidding audience of the terminal Forehand state) are
// programming-contract failures and panic instead. They are unreachable
// given a well-formed driver.
var (
	// ErrInvalidPlayer signals that an actor other than the one designated
	// by the current phase attempted to move.
	ErrInvalidPlayer = errors.New("player not at turn")
	// ErrInvalidMove signals a move that is structurally valid for the
	// phase but violates a rule.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInvalidState signals an operation whose structural precondition
	// does not hold, e.g. picking from an empty widow.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput signals malformed move text.
	ErrInvalidInput = errors.New("invalid input")
)
