package ws

import (
	"encoding/json"
	"sync"
)

type RoomKind string

const (
	RoomUser    RoomKind = "user"
	RoomPayment RoomKind = "payment"
	RoomProduct RoomKind = "product"
)

// Event yang di-emit server ke room.
const (
	EventPaymentSuccess  = "successPaymentId"
	EventProductUpdated  = "productUpdated"
	EventProductDeleted  = "productDeleted"
	EventNewNotification = "newNotification"
)

type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub: pub/sub room in-memory. Delivery best-effort ke subscriber yang
// sedang connect; bukan message log -- client offline baca state lewat
// list/detail biasa.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[chan []byte]struct{}
	members map[chan []byte]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[chan []byte]struct{}),
		members: make(map[chan []byte]map[string]struct{}),
	}
}

func roomKey(kind RoomKind, id string) string { return string(kind) + ":" + id }

func (h *Hub) Join(kind RoomKind, id string, ch chan []byte) {
	key := roomKey(kind, id)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[chan []byte]struct{})
	}
	h.rooms[key][ch] = struct{}{}
	if h.members[ch] == nil {
		h.members[ch] = make(map[string]struct{})
	}
	h.members[ch][key] = struct{}{}
}

func (h *Hub) Leave(kind RoomKind, id string, ch chan []byte) {
	key := roomKey(kind, id)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(key, ch)
}

// LeaveAll dipanggil saat koneksi putus; subscription scope-nya umur koneksi.
func (h *Hub) LeaveAll(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.members[ch] {
		h.leaveLocked(key, ch)
	}
}

func (h *Hub) leaveLocked(key string, ch chan []byte) {
	if subs, ok := h.rooms[key]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.rooms, key)
		}
	}
	if keys, ok := h.members[ch]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(h.members, ch)
		}
	}
}

// Publish kirim event ke semua subscriber room. Non-blocking: subscriber
// yang buffer-nya penuh dilewati, bukan ditunggu.
func (h *Hub) Publish(kind RoomKind, id, event string, data any) int {
	b, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return 0
	}
	key := roomKey(kind, id)

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for ch := range h.rooms[key] {
		select {
		case ch <- b:
			sent++
		default:
		}
	}
	return sent
}
