package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

const (
	EventScheduleUpdated = "SCHEDULE_UPDATED"
	EventGameUpdated     = "GAME_UPDATED"
)

// Message is the envelope pushed to websocket and SSE listeners.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// RoomForTournament names the room that carries a tournament's updates.
func RoomForTournament(tournamentID string) string {
	return "tournament_" + tournamentID
}

const subscriberBuffer = 16

// Hub fans room messages out to websocket clients and channel subscribers.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once

	mu          sync.RWMutex
	rooms       map[string]map[*Client]bool
	subscribers map[string]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		done:        make(chan struct{}),
		rooms:       make(map[string]map[*Client]bool),
		subscribers: make(map[string]map[chan []byte]struct{}),
	}
}

// Run processes registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			log.Printf("Client registered to room %s. Total clients in room: %d", client.Room, len(h.rooms[client.Room]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok && clients[client] {
				client.closeSend()
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.rooms, client.Room)
					log.Printf("Room %s closed as it's empty.", client.Room)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					client.closeSend()
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient hands c to Run. It reports false when the hub has stopped.
func (h *Hub) RegisterClient(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// ClientCount reports the websocket clients currently in a room.
func (h *Hub) ClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Subscribe returns a channel receiving every encoded message of the room.
// Slow subscribers drop messages. cancel closes the channel.
func (h *Hub) Subscribe(roomID string) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if _, ok := h.subscribers[roomID]; !ok {
		h.subscribers[roomID] = make(map[chan []byte]struct{})
	}
	h.subscribers[roomID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[roomID], ch)
			if len(h.subscribers[roomID]) == 0 {
				delete(h.subscribers, roomID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// BroadcastToRoom отправляет сообщение всем клиентам и подписчикам комнаты.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling message for room %s: %v", roomID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if !client.trySend(messageBytes) {
			log.Printf("Client's send channel full or closed for room %s. Skipping.", roomID)
		}
	}
	for ch := range h.subscribers[roomID] {
		select {
		case ch <- messageBytes:
		default:
			log.Printf("Subscriber of room %s is too slow. Dropping message.", roomID)
		}
	}
}
