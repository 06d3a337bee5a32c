package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Entities named in refresh notifications.
const (
	EntityMovieNight = "movie_night"
	EntityAttendance = "attendance"
	EntityFriend     = "friend"
	EntityFollow     = "follow"
	EntityProfile    = "profile"
	EntitySession    = "session"
)

// Message tells open tabs that an entity changed so they refetch it.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub tracks open tabs by signed-in user. Movie night and friend changes go
// to every tab; session and profile changes only to the owner's tabs.
type Hub struct {
	mu     sync.RWMutex
	tabs   map[*Client]struct{}
	byUser map[int64]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		tabs:   make(map[*Client]struct{}),
		byUser: make(map[int64]map[*Client]struct{}),
		logger: logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.tabs[c] = struct{}{}
	owned, ok := h.byUser[c.userID]
	if !ok {
		owned = make(map[*Client]struct{})
		h.byUser[c.userID] = owned
	}
	owned[c] = struct{}{}
	n := len(owned)
	h.mu.Unlock()
	h.logger.Debug("tab connected", "user_id", c.userID, "client_id", c.id, "user_tabs", n)
}

// Unregister removes a tab and closes its send channel. Calling it twice is
// harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.tabs[c]; !ok {
		return
	}
	delete(h.tabs, c)
	if owned := h.byUser[c.userID]; owned != nil {
		delete(owned, c)
		if len(owned) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	close(c.send)
}

// Broadcast sends msg to every open tab. A tab whose buffer is full misses
// it and refetches on its next load.
func (h *Hub) Broadcast(msg Message) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.tabs, data, msg.Type)
}

// SendToUser sends msg to the tabs signed in as userID only.
func (h *Hub) SendToUser(userID int64, msg Message) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.byUser[userID], data, msg.Type)
}

func (h *Hub) encode(msg Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal refresh notification", "type", msg.Type, "error", err)
		return nil, false
	}
	return data, true
}

// deliver must be called with mu held.
func (h *Hub) deliver(tabs map[*Client]struct{}, data []byte, typ string) {
	for c := range tabs {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping refresh notification", "type", typ, "client_id", c.id)
		}
	}
}

// Notify broadcasts entity_action for id.
func (h *Hub) Notify(entity, action string, id int64) {
	h.Broadcast(NewMessage(entity, action, id, nil))
}

// NotifyUser sends entity_action for id to userID's tabs.
func (h *Hub) NotifyUser(userID int64, entity, action string, id int64) {
	h.SendToUser(userID, NewMessage(entity, action, id, nil))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tabs)
}

// UserCount reports how many distinct users have a tab open.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser)
}
