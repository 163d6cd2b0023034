// Package ws streams per-game patch envelopes to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/delveworks/dungeon-delve-engine/internal/engine"
	"github.com/delveworks/dungeon-delve-engine/internal/logger"
	"github.com/delveworks/dungeon-delve-engine/internal/protocol"
)

const writeTimeout = 3 * time.Second

// Hub fans game patches out to the sockets watching each game. Games are
// independent rooms; a connection joins exactly one.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]struct{}
	log   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]struct{}),
		log:   logger.Get(),
	}
}

// Join registers a connection as a watcher of the game.
func (h *Hub) Join(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	room := h.rooms[gameID]
	if room == nil {
		room = make(map[*websocket.Conn]struct{})
		h.rooms[gameID] = room
	}
	room[conn] = struct{}{}
	h.mu.Unlock()
}

// Leave removes a connection from the game's room.
func (h *Hub) Leave(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	if room := h.rooms[gameID]; room != nil {
		delete(room, conn)
		if len(room) == 0 {
			delete(h.rooms, gameID)
		}
	}
	h.mu.Unlock()
}

// Broadcast writes a message to every watcher of the game. Dead connections
// are dropped from the room.
func (h *Hub) Broadcast(gameID string, message []byte) {
	h.mu.Lock()
	room := h.rooms[gameID]
	for conn := range room {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			delete(room, conn)
		}
	}
	h.mu.Unlock()
}

// Watchers reports how many connections follow the game.
func (h *Hub) Watchers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[gameID])
}

// AttachGame subscribes the hub to a game's event stream. Every domain event
// reaches the game's watchers as one JSON patch envelope.
func (h *Hub) AttachGame(g *engine.Game) {
	protocol.AttachPatches(g, func(patch protocol.PatchEnvelope) {
		data, err := json.Marshal(patch)
		if err != nil {
			h.log.Error("marshal patch failed",
				zap.String("gameId", patch.GameID),
				zap.String("type", patch.Type),
				zap.Error(err))
			return
		}
		h.Broadcast(patch.GameID, data)
	})
}
