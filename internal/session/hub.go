package session

import (
	"sync"

	"github.com/sirivellaramudu/code-collab-server/internal/models"
	"github.com/sirivellaramudu/code-collab-server/internal/utils"
)

// StatusObserver receives best-effort notifications about room lifecycle,
// e.g. to mirror live room metadata into an external directory. Calls are
// made outside any room goroutine; implementations must not block for long.
type StatusObserver interface {
	RoomActive(status models.RoomStatus)
	RoomClosed(roomID string)
}

// Hub is the session registry: it maps room ids to live rooms, creates
// rooms lazily on first join, and evicts them once empty. It also tracks
// which room each connection belongs to, so leaving needs no room id.
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	conns    map[string]*Room
	log      *utils.Logger
	observer StatusObserver
}

func NewHub(log *utils.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
		conns: make(map[string]*Room),
		log:   log,
	}
}

func (h *Hub) SetObserver(o StatusObserver) {
	h.mu.Lock()
	h.observer = o
	h.mu.Unlock()
}

// JoinRoom resolves the room for roomID, creating it with the given
// language if absent, and registers the connection. An unknown room id is
// never an error. A connection already in a different room is moved; a
// re-join of the current room just returns the snapshot.
func (h *Hub) JoinRoom(c *Client, roomID string, language models.Language, label string) models.RoomSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.conns[c.ID]; ok && prev.ID != roomID {
		h.leaveLocked(c.ID, prev)
	}

	room, ok := h.rooms[roomID]
	if !ok {
		if language == "" {
			language = models.DefaultLanguage
		}
		room = NewRoom(roomID, language)
		h.rooms[roomID] = room
		h.log.Info("room created", "room", roomID, "language", language)
	}

	snap, _ := room.Join(c, label)
	h.conns[c.ID] = room
	h.notifyActive(room)
	return snap
}

// LeaveRoom removes the connection from whichever room it belongs to and
// evicts the room if it became empty. No-op for connections that are not a
// member of any room, and safe to call multiple times.
func (h *Hub) LeaveRoom(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.conns[connID]
	if !ok {
		return
	}
	h.leaveLocked(connID, room)
}

func (h *Hub) leaveLocked(connID string, room *Room) {
	remaining, _ := room.Leave(connID)
	delete(h.conns, connID)
	if remaining == 0 {
		delete(h.rooms, room.ID)
		room.Stop()
		h.log.Info("room closed", "room", room.ID)
		if h.observer != nil {
			h.observer.RoomClosed(room.ID)
		}
		return
	}
	h.notifyActive(room)
}

func (h *Hub) notifyActive(room *Room) {
	if h.observer == nil {
		return
	}
	h.observer.RoomActive(room.Status())
}

// Room returns the live room for id, if any.
func (h *Hub) Room(id string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	return r, ok
}

// RoomFor returns the room a connection is currently joined to.
func (h *Hub) RoomFor(connID string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.conns[connID]
	return r, ok
}

func (h *Hub) GetDoc(roomID string) (string, bool) {
	room, ok := h.Room(roomID)
	if !ok {
		return "", false
	}
	return room.Snapshot().Code, true
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
