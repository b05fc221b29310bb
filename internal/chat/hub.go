package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultHistorySize = 50

// RoomID identifies a discussion room by the gallery it belongs to.
type RoomID struct {
	GID   int64
	Token string
}

// Key is the wire form of the room identity, "gid/token".
func (id RoomID) Key() string {
	return fmt.Sprintf("%d/%s", id.GID, id.Token)
}

// Message is one event in a gallery discussion room. Room carries the
// RoomID key of the gallery being discussed.
type Message struct {
	Type string    `json:"type"`
	Room string    `json:"room"`
	User string    `json:"user"`
	Text string    `json:"text,omitempty"`
	At   time.Time `json:"at"`
}

type room struct {
	members map[*websocket.Conn]string
	history []Message
}

func (r *room) remember(msg Message, max int) {
	r.history = append(r.history, msg)
	if overflow := len(r.history) - max; overflow > 0 {
		r.history = r.history[overflow:]
	}
}

// Hub keeps one discussion room per gallery with a bounded replay history
// so late joiners see recent messages.
type Hub struct {
	mu          sync.Mutex
	rooms       map[RoomID]*room
	historySize int
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		rooms:       make(map[RoomID]*room),
		historySize: historySize,
	}
}

// Join registers ws in the gallery's room and returns the replay history.
func (h *Hub) Join(id RoomID, ws *websocket.Conn, user string) []Message {
	h.mu.Lock()
	r := h.roomLocked(id)
	r.members[ws] = user
	replay := append([]Message(nil), r.history...)
	h.mu.Unlock()

	h.broadcast(id, Message{Type: "user_join", Room: id.Key(), User: user})
	return replay
}

func (h *Hub) Leave(id RoomID, ws *websocket.Conn) {
	h.mu.Lock()
	var user string
	if r, ok := h.rooms[id]; ok {
		user = r.members[ws]
		delete(r.members, ws)
		if len(r.members) == 0 && len(r.history) == 0 {
			delete(h.rooms, id)
		}
	}
	h.mu.Unlock()

	_ = ws.Close()

	if user != "" {
		h.broadcast(id, Message{Type: "user_leave", Room: id.Key(), User: user})
	}
}

// Say posts a chat message to the gallery's room. It is remembered in the
// replay history and fanned out to every member.
func (h *Hub) Say(id RoomID, user, text string) {
	h.broadcast(id, Message{Type: "message", Room: id.Key(), User: user, Text: text})
}

func (h *Hub) broadcast(id RoomID, msg Message) {
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[id]
	if !ok {
		return
	}

	if msg.Type == "message" {
		r.remember(msg, h.historySize)
	}

	for ws := range r.members {
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = ws.Close()
			delete(r.members, ws)
		}
	}
}

func (h *Hub) History(id RoomID) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return append([]Message(nil), r.history...)
	}
	return nil
}

func (h *Hub) User(id RoomID, ws *websocket.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r.members[ws]
	}
	return ""
}

func (h *Hub) roomLocked(id RoomID) *room {
	r, ok := h.rooms[id]
	if !ok {
		r = &room{members: make(map[*websocket.Conn]string)}
		h.rooms[id] = r
	}
	return r
}
