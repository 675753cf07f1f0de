package events

import (
	"encoding/json"
	"sync"
	"time"

	"focustracks/logger"

	"github.com/gorilla/websocket"
)

// EventType names a playlist change event.
type EventType string

const (
	EventTrackAdded      EventType = "track_added"
	EventTrackRemoved    EventType = "track_removed"
	EventTrackMoved      EventType = "track_moved"
	EventPlaylistDeleted EventType = "playlist_deleted"
)

// Event is broadcast to every subscriber of a playlist after a membership
// mutation.
type Event struct {
	Type       EventType `json:"type"`
	PlaylistID int64     `json:"playlistId"`
	TrackID    int64     `json:"trackId,omitempty"`
	Position   int       `json:"position,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

// Subscriber is one websocket connection watching a playlist.
type Subscriber struct {
	hub        *Hub
	conn       *websocket.Conn
	playlistID int64
	send       chan []byte
}

// Hub fans playlist events out to websocket subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a websocket connection for a playlist's events and
// starts its read/write pumps. The connection is owned by the hub from this
// point on.
func (h *Hub) Subscribe(playlistID int64, conn *websocket.Conn) {
	sub := &Subscriber{
		hub:        h,
		conn:       conn,
		playlistID: playlistID,
		send:       make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	subs, ok := h.subscribers[playlistID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.subscribers[playlistID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	go sub.writePump()
	go sub.readPump()
}

// Broadcast sends an event to every subscriber of its playlist. Slow
// subscribers are dropped rather than blocking the caller.
func (h *Hub) Broadcast(event Event) {
	event.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal playlist event", logger.ErrorField(err))
		return
	}

	h.mu.RLock()
	var stale []*Subscriber
	for sub := range h.subscribers[event.PlaylistID] {
		select {
		case sub.send <- data:
		default:
			stale = append(stale, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stale {
		h.unsubscribe(sub)
	}
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	subs, ok := h.subscribers[sub.playlistID]
	if ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			close(sub.send)
			if len(subs) == 0 {
				delete(h.subscribers, sub.playlistID)
			}
		}
	}
	h.mu.Unlock()
}

// writePump forwards queued events to the websocket connection.
func (s *Subscriber) writePump() {
	defer s.conn.Close()
	for data := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound messages and detects disconnects.
func (s *Subscriber) readPump() {
	defer s.hub.unsubscribe(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
