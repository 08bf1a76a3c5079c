package realtime

import (
	"log/slog"
	"sync"

	"github.com/mehfilhq/mehfil/internal/domain"
)

// RoomGlobalFeed is the single broadcast scope every accepted connection
// joins. Topic-scoped rooms are additive: publish call sites address a room,
// never the whole process.
const RoomGlobalFeed = "feed:global"

// Hub owns room membership and fan-out. All membership mutation happens
// under the hub's lock, so join/leave/publish are serialized against each
// other.
type Hub struct {
	mu       sync.RWMutex
	members  map[*Client]struct{}
	rooms    map[string]map[*Client]struct{}
	registry *Registry
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		members:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		registry: registry,
	}
}

// Register accepts a connection into the hub and places it in the global
// feed room.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.members[client] = struct{}{}
	h.join(RoomGlobalFeed, client)
}

// Unregister tears a connection down: it leaves every room, its identity
// binding is dropped, and the connection is closed. Safe to call more than
// once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.members[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.members, client)
	for room, clients := range h.rooms {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	h.registry.Unregister(client)
	client.Close()
}

// Publish fans an event out to every member of the room, including the
// originator. Clients whose send buffer is full miss the event; the stream
// self-corrects on their next load.
func (h *Hub) Publish(room string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		if !client.Send(event) {
			slog.Warn(
				"Dropping event for slow client",
				slog.String("connection", client.ID()),
				slog.String("event", string(event.Type)),
				slog.String("module", "hub"),
			)
		}
	}
}

// Len reports the number of live connections, used by the admission gate.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

// RoomSize reports the membership of a single room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) join(room string, client *Client) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
}
