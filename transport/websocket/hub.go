package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/ludo-backend/internal/usecase"
)

// session is one websocket connection. Outbound frames go through send, which
// is closed when the session is dropped.
type session struct {
	id   string
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newSession(id string, buffer int) *session {
	return &session{
		id:   id,
		send: make(chan []byte, buffer),
	}
}

// enqueue never blocks. A session that cannot keep up is closed.
func (that *session) enqueue(frame []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- frame:
		return true
	default:
		that.closed = true
		close(that.send)

		return false
	}
}

func (that *session) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.send)
	}
}

// Hub tracks live sessions and which rooms each of them listens to.
type Hub struct {
	logger *slog.Logger

	connectionsMutex sync.RWMutex
	connections      map[string]*session
	rooms            map[string]map[string]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "hub"),
		connections: make(map[string]*session),
		rooms:       make(map[string]map[string]struct{}),
	}
}

func (that *Hub) register(s *session) {
	that.connectionsMutex.Lock()
	that.connections[s.id] = s
	that.connectionsMutex.Unlock()
}

// unregister drops the session everywhere and returns the rooms it was in.
func (that *Hub) unregister(sessionID string) []string {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if s, ok := that.connections[sessionID]; ok {
		s.close()
		delete(that.connections, sessionID)
	}

	var roomIDs []string
	for roomID, members := range that.rooms {
		if _, ok := members[sessionID]; !ok {
			continue
		}

		roomIDs = append(roomIDs, roomID)
		delete(members, sessionID)

		if len(members) == 0 {
			delete(that.rooms, roomID)
		}
	}

	return roomIDs
}

func (that *Hub) Subscribe(roomID, sessionID string) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if _, ok := that.connections[sessionID]; !ok {
		return
	}

	members, ok := that.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		that.rooms[roomID] = members
	}

	members[sessionID] = struct{}{}
}

func (that *Hub) Unsubscribe(roomID, sessionID string) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(members, sessionID)

	if len(members) == 0 {
		delete(that.rooms, roomID)
	}
}

// CloseRoom drops every subscription to a room that no longer exists.
func (that *Hub) CloseRoom(roomID string) {
	that.connectionsMutex.Lock()
	delete(that.rooms, roomID)
	that.connectionsMutex.Unlock()
}

// Publish sends the event to every session in the room.
func (that *Hub) Publish(roomID string, event usecase.Event) {
	log := that.logger.With("method", "Publish", "roomID", roomID, "event", event.Type)

	frame, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal event", "error", err)
		return
	}

	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	for sessionID := range that.rooms[roomID] {
		s, ok := that.connections[sessionID]
		if !ok {
			continue
		}

		if !s.enqueue(frame) {
			log.Warn("session dropped, send buffer full", "sessionID", sessionID)
		}
	}
}

// Notify sends the event to a single session.
func (that *Hub) Notify(sessionID string, event usecase.Event) {
	frame, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "event", event.Type, "error", err)
		return
	}

	that.send(sessionID, frame)
}

func (that *Hub) send(sessionID string, frame []byte) {
	that.connectionsMutex.RLock()
	s, ok := that.connections[sessionID]
	that.connectionsMutex.RUnlock()

	if !ok {
		return
	}

	if !s.enqueue(frame) {
		that.logger.Warn("session dropped, send buffer full", "sessionID", sessionID)
	}
}

func (that *Hub) members(roomID string) int {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return len(that.rooms[roomID])
}
