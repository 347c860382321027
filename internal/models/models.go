// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"

	"skat/engine"
)

// User holds the account identity of a connected player.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player represents one connected participant of a table.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	User      *User           `json:"user,omitempty"`
	Seat      engine.Player   `json:"seat"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}

// MoveRequest is the client payload for applying a move in text form.
type MoveRequest struct {
	Move string `json:"move"`
}

// DealResult is the persisted outcome of one finished deal.
type DealResult struct {
	TableID       uuid.UUID `json:"tableId"`
	Declarer      string    `json:"declarer"`
	Declaration   string    `json:"declaration"`
	Bid           int       `json:"bid"`
	DeclarerScore int       `json:"declarerScore"`
	Winners       []string  `json:"winners"`
}
