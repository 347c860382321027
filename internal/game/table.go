// internal/game/table.go
package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skat/engine"
	"skat/internal/auth"
	"skat/internal/cache"
	"skat/internal/database"
	"skat/internal/models"
)

// OnDealEndFunc is executed when a deal finishes, with the persisted result.
type OnDealEndFunc func(result models.DealResult)

// Table hosts one Skat deal: three seated players plus the engine's
// environment actor, which the table plays itself. The table owns the
// authoritative state; clients only ever see redacted views and translated
// moves.
type Table struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string // Empty for public tables.

	Game    *engine.Game
	Players []*models.Player
	SeatOf  map[uuid.UUID]engine.Player

	Started bool
	// declared is the announced contract in move grammar, "overbidden"
	// for an overbid deal, empty while none was made.
	declared string

	Mu sync.Mutex

	// seedFn supplies entropy for environment moves. Replaceable in tests.
	seedFn func() uint64

	BroadcastToPlayerFn func(playerID uuid.UUID, ev TableEvent)
	OnDealEnd           OnDealEndFunc

	log *logrus.Entry
}

// NewTable creates an empty table with a fresh deal.
func NewTable(name string) *Table {
	id := uuid.New()
	return &Table{
		ID:     id,
		Name:   name,
		Game:   engine.NewGame(),
		SeatOf: make(map[uuid.UUID]engine.Player),
		seedFn: cryptoSeed,
		log:    logrus.WithField("table", id),
	}
}

// cryptoSeed draws a uniform 64-bit seed from the OS entropy source.
func cryptoSeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// Fall back to the clock; sampling quality degrades but play
		// remains legal.
		logrus.WithError(err).Error("entropy source failed")
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// AddPlayer seats a player, or reattaches a returning one. Returns false if
// the table is full.
func (t *Table) AddPlayer(p *models.Player) bool {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	if seat, ok := t.SeatOf[p.ID]; ok {
		for _, seated := range t.Players {
			if seated.ID == p.ID {
				seated.Conn = p.Conn
				seated.Connected = true
				t.log.WithField("player", p.ID).Info("player reconnected")
				t.sendView(seated.ID, seat)
				return true
			}
		}
	}
	if len(t.Players) >= engine.NumPlayers {
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "table is full")
		}
		return false
	}

	p.Seat = engine.Player(len(t.Players))
	p.Connected = true
	t.Players = append(t.Players, p)
	t.SeatOf[p.ID] = p.Seat
	t.log.WithFields(logrus.Fields{"player": p.ID, "seat": p.Seat}).Info("player seated")

	t.broadcast(TableEvent{
		Type: EventPlayerJoined,
		Seat: &EventSeat{PlayerID: p.ID, Seat: p.Seat.String(), Username: username(p)},
	})
	t.registerInCache()
	return true
}

// HandleDisconnect marks the player as disconnected. The seat stays bound so
// the player can return; the deal does not pause, other seats simply wait.
func (t *Table) HandleDisconnect(playerID uuid.UUID) {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	for _, p := range t.Players {
		if p.ID != playerID {
			continue
		}
		p.Connected = false
		p.Conn = nil
		t.log.WithField("player", playerID).Info("player disconnected")
		t.broadcast(TableEvent{
			Type: EventPlayerLeft,
			Seat: &EventSeat{PlayerID: p.ID, Seat: p.Seat.String(), Username: username(p)},
		})
		return
	}
}

// Start begins the deal once all three seats are taken: the table deals the
// whole deck as the environment and hands over to the bidding.
func (t *Table) Start() bool {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	if t.Started || len(t.Players) != engine.NumPlayers {
		return false
	}
	t.Started = true
	t.log.Info("deal started")
	t.broadcast(TableEvent{Type: EventDealStarted, Phase: t.Game.Phase.String()})

	t.advance()
	t.syncAll()
	t.registerInCache()
	return true
}

// HandleMove parses and applies a move sent by a seated player.
func (t *Table) HandleMove(playerID uuid.UUID, text string) {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	seat, ok := t.SeatOf[playerID]
	if !ok {
		t.sendError(playerID, "you are not seated at this table")
		return
	}
	m, err := t.Game.ParseMove(text)
	if err != nil {
		t.sendError(playerID, err.Error())
		return
	}
	if err := t.applyMove(seat.Actor(), m); err != nil {
		t.sendError(playerID, err.Error())
		return
	}
	t.advance()
}

// applyMove validates and applies one move, broadcasting the per-observer
// translation. Assumes lock is held.
func (t *Table) applyMove(actor engine.Actor, m engine.Move) error {
	// Translation and text rendering depend on the pre-move phase.
	type outgoing struct {
		playerID uuid.UUID
		ev       TableEvent
	}
	var queue []outgoing
	for _, p := range t.Players {
		translated := t.Game.TranslateMove(actor, m, p.Seat.Actor())
		text, err := t.Game.FormatMove(translated)
		if err != nil {
			t.log.WithError(err).Error("formatting translated move")
			continue
		}
		queue = append(queue, outgoing{p.ID, TableEvent{
			Type:  EventMoveApplied,
			Actor: actor.String(),
			Move:  text,
		}})
	}

	var declaredText string
	if t.Game.Phase == engine.PhaseDeclaring {
		if text, err := t.Game.FormatMove(m); err == nil {
			declaredText = text
		}
	}

	if err := t.Game.ApplyMove(actor, m); err != nil {
		return err
	}
	if declaredText != "" {
		t.declared = declaredText
	}

	for _, out := range queue {
		out.ev.Phase = t.Game.Phase.String()
		t.send(out.playerID, out.ev)
	}
	return nil
}

// advance plays every pending environment move, then settles a finished
// deal. Assumes lock is held.
func (t *Table) advance() {
	for {
		actors := t.Game.ToMove()
		if len(actors) != 1 || actors[0] != engine.Environment {
			break
		}
		m, err := t.Game.RandomMove(t.seedFn())
		if err != nil {
			t.log.WithError(err).Error("sampling environment move")
			return
		}
		if err := t.applyMove(engine.Environment, m); err != nil {
			t.log.WithError(err).Error("applying environment move")
			return
		}
	}
	if t.Game.Phase == engine.PhaseFinished {
		t.finishDeal()
	}
}

// finishDeal reports and persists the deal result. Assumes lock is held.
func (t *Table) finishDeal() {
	result := models.DealResult{
		TableID:       t.ID,
		Declaration:   t.declared,
		DeclarerScore: int(t.Game.DeclarerScore),
	}
	// An all-pass deal has no bid and no declarer; leave those empty.
	if t.Game.Bid >= engine.MinimumBid {
		result.Bid = int(t.Game.Bid)
		result.Declarer = t.Game.Declarer.String()
	}
	for _, w := range t.Game.Winners {
		result.Winners = append(result.Winners, w.String())
	}

	t.log.WithFields(logrus.Fields{
		"declarer": result.Declarer,
		"score":    result.DeclarerScore,
		"winners":  result.Winners,
	}).Info("deal finished")

	t.broadcast(TableEvent{Type: EventDealFinished, Result: &result})
	t.syncAll()

	if database.DB != nil {
		go func(r models.DealResult) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreDealResult(ctx, r); err != nil {
				logrus.WithError(err).Error("persisting deal result")
			}
		}(result)
	}
	if cache.Rdb != nil {
		go func(id uuid.UUID) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := cache.DropTable(ctx, id); err != nil {
				logrus.WithError(err).Error("dropping table from cache")
			}
		}(t.ID)
	}
	if t.OnDealEnd != nil {
		t.OnDealEnd(result)
	}
}

// SendView sends the requesting player their current redacted view.
func (t *Table) SendView(playerID uuid.UUID) {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	seat, ok := t.SeatOf[playerID]
	if !ok {
		t.sendError(playerID, "you are not seated at this table")
		return
	}
	t.sendView(playerID, seat)
}

// sendView sends a private sync view. Assumes lock is held.
func (t *Table) sendView(playerID uuid.UUID, seat engine.Player) {
	t.send(playerID, TableEvent{
		Type: EventSyncView,
		View: t.buildView(seat),
	})
}

// syncAll sends each connected player their view. Assumes lock is held.
func (t *Table) syncAll() {
	for _, p := range t.Players {
		if p.Connected {
			t.sendView(p.ID, p.Seat)
		}
	}
}

// Entry returns the lobby-facing summary of the table.
func (t *Table) Entry() cache.TableEntry {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.entry()
}

// entry builds the lobby summary. Assumes lock is held.
func (t *Table) entry() cache.TableEntry {
	return cache.TableEntry{
		TableID: t.ID,
		Name:    t.Name,
		Private: t.PasswordHash != "",
		Seated:  len(t.Players),
		Phase:   t.Game.Phase.String(),
	}
}

// Authorize reports whether the password admits a player: public tables
// admit everyone.
func (t *Table) Authorize(password string) bool {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if t.PasswordHash == "" {
		return true
	}
	return auth.CheckPassword(t.PasswordHash, password)
}

// registerInCache upserts the live-table entry. Assumes lock is held.
func (t *Table) registerInCache() {
	if cache.Rdb == nil {
		return
	}
	entry := t.entry()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.RegisterTable(ctx, entry); err != nil {
			logrus.WithError(err).Error("registering table in cache")
		}
	}()
}

// send delivers an event to one player. Assumes lock is held.
func (t *Table) send(playerID uuid.UUID, ev TableEvent) {
	if t.BroadcastToPlayerFn == nil {
		t.log.WithField("type", ev.Type).Warn("no broadcast function configured")
		return
	}
	t.BroadcastToPlayerFn(playerID, ev)
}

// broadcast delivers an event to every connected player. Assumes lock is
// held.
func (t *Table) broadcast(ev TableEvent) {
	for _, p := range t.Players {
		if p.Connected {
			t.send(p.ID, ev)
		}
	}
}

// sendError sends a private rejection message. Assumes lock is held.
func (t *Table) sendError(playerID uuid.UUID, msg string) {
	t.send(playerID, TableEvent{Type: EventMoveRejected, Message: msg})
}

func username(p *models.Player) string {
	if p.User != nil {
		return p.User.Username
	}
	return ""
}
