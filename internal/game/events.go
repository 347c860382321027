// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"skat/internal/models"
)

// TableEventType tags the events broadcast to table clients.
type TableEventType string

const (
	EventPlayerJoined TableEventType = "player_joined"      // Public: a seat was taken.
	EventPlayerLeft   TableEventType = "player_left"        // Public: a seat was vacated.
	EventDealStarted  TableEventType = "deal_started"       // Public: dealing has begun.
	EventMoveApplied  TableEventType = "move_applied"       // Per-observer: a move was applied, redacted to the receiver.
	EventDealFinished TableEventType = "deal_finished"      // Public: deal over, includes the result.
	EventSyncView     TableEventType = "private_sync_view"  // Private: full redacted state for the receiver.
	EventMoveRejected TableEventType = "private_move_error" // Private: the receiver's move was rejected.
)

// EventSeat identifies a seated player within an event payload.
type EventSeat struct {
	PlayerID uuid.UUID `json:"playerId"`
	Seat     string    `json:"seat"`
	Username string    `json:"username,omitempty"`
}

// TableEvent is the frame broadcast to table clients.
type TableEvent struct {
	Type TableEventType `json:"type"`
	Seat *EventSeat     `json:"seat,omitempty"`

	// Move fields are set for EventMoveApplied, already translated to what
	// the receiving observer may learn.
	Actor string `json:"actor,omitempty"`
	Move  string `json:"move,omitempty"`
	Phase string `json:"phase,omitempty"`

	View    *View              `json:"view,omitempty"`
	Result  *models.DealResult `json:"result,omitempty"`
	Message string             `json:"message,omitempty"`
}
