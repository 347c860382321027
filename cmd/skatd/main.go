// cmd/skatd/main.go
//
// skatd hosts Skat tables over WebSockets: clients create a table, obtain a
// seat token and connect; the server drives the deal and streams redacted
// state.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skat/engine"
	"skat/internal/auth"
	"skat/internal/cache"
	"skat/internal/config"
	"skat/internal/database"
	"skat/internal/game"
	"skat/internal/models"
)

const sendBuffer = 64

// client is one connected websocket with an ordered outgoing queue.
type client struct {
	conn *websocket.Conn
	send chan game.TableEvent
}

type server struct {
	cfg  *config.Config
	auth *auth.Service

	mu      sync.Mutex
	tables  map[uuid.UUID]*game.Table
	clients map[uuid.UUID]*client
}

func main() {
	cfg := config.Load()
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()
	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Fatal("database connection failed")
		}
		defer database.Close()
	}
	if cfg.RedisAddr != "" {
		if err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
			logrus.WithError(err).Fatal("redis connection failed")
		}
		defer cache.Close()
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("SKAT_JWT_SECRET must be set")
	}

	s := &server{
		cfg:     cfg,
		auth:    auth.NewService(cfg.JWTSecret),
		tables:  make(map[uuid.UUID]*game.Table),
		clients: make(map[uuid.UUID]*client),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /tables", s.handleCreateTable)
	mux.HandleFunc("GET /tables", s.handleListTables)
	mux.HandleFunc("POST /tables/join", s.handleJoin)
	mux.HandleFunc("GET /ws", s.handleWS)

	logrus.WithField("addr", cfg.ListenAddr).Info("skatd listening")
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func (s *server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t := game.NewTable(req.Name)
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			logrus.WithError(err).Error("hashing table password")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		t.PasswordHash = hash
	}
	t.BroadcastToPlayerFn = s.deliver
	t.OnDealEnd = func(result models.DealResult) {
		s.mu.Lock()
		delete(s.tables, result.TableID)
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.tables[t.ID] = t
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{"table": t.ID, "name": req.Name}).Info("table created")
	writeJSON(w, map[string]string{"tableId": t.ID.String()})
}

func (s *server) handleListTables(w http.ResponseWriter, r *http.Request) {
	entries, err := cache.LiveTables(r.Context())
	if err != nil {
		logrus.WithError(err).Error("listing live tables")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		// Without a cache, fall back to the in-memory registry. Table
		// fields are read under each table's own lock, after releasing
		// s.mu: deal-end callbacks take s.mu while holding a table lock.
		s.mu.Lock()
		tables := make([]*game.Table, 0, len(s.tables))
		for _, t := range s.tables {
			tables = append(tables, t)
		}
		s.mu.Unlock()
		for _, t := range tables {
			entries = append(entries, t.Entry())
		}
	}
	writeJSON(w, entries)
}

func (s *server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID  uuid.UUID `json:"tableId"`
		UserID   uuid.UUID `json:"userId"`
		Password string    `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	t, ok := s.tables[req.TableID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	if !t.Authorize(req.Password) {
		http.Error(w, "wrong password", http.StatusForbidden)
		return
	}

	token, err := s.auth.MintToken(req.UserID, req.TableID)
	if err != nil {
		logrus.WithError(err).Error("minting seat token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"token": token})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := s.auth.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	t, ok := s.tables[claims.TableID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket accept failed")
		return
	}

	c := &client{conn: conn, send: make(chan game.TableEvent, sendBuffer)}
	s.mu.Lock()
	s.clients[claims.UserID] = c
	s.mu.Unlock()
	go c.writeLoop()

	player := &models.Player{
		ID:   claims.UserID,
		User: &models.User{ID: claims.UserID, Username: r.URL.Query().Get("name")},
		Conn: conn,
	}
	if !t.AddPlayer(player) {
		s.dropClient(claims.UserID)
		return
	}

	t.Mu.Lock()
	full := len(t.Players) == engine.NumPlayers && !t.Started
	t.Mu.Unlock()
	if full {
		t.Start()
	}

	s.readLoop(r.Context(), t, claims.UserID, conn)
}

// readLoop consumes client frames until the connection drops.
func (s *server) readLoop(ctx context.Context, t *game.Table, userID uuid.UUID, conn *websocket.Conn) {
	defer func() {
		t.HandleDisconnect(userID)
		s.dropClient(userID)
	}()
	for {
		var req models.MoveRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if !errors.Is(err, context.Canceled) {
				logrus.WithField("player", userID).WithError(err).Debug("read loop ended")
			}
			return
		}
		if req.Move == "view" {
			t.SendView(userID)
			continue
		}
		t.HandleMove(userID, req.Move)
	}
}

// deliver queues an event for the player's connection. Full queues drop the
// event; the client can always resync with a view request.
func (s *server) deliver(playerID uuid.UUID, ev game.TableEvent) {
	s.mu.Lock()
	c, ok := s.clients[playerID]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case c.send <- ev:
	default:
		logrus.WithField("player", playerID).Warn("send queue full, dropping event")
	}
}

func (s *server) dropClient(playerID uuid.UUID) {
	s.mu.Lock()
	c, ok := s.clients[playerID]
	delete(s.clients, playerID)
	s.mu.Unlock()
	if ok {
		close(c.send)
	}
}

func (c *client) writeLoop() {
	for ev := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := wsjson.Write(ctx, c.conn, ev)
		cancel()
		if err != nil {
			c.conn.Close(websocket.StatusInternalError, "write failed")
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing response")
	}
}
