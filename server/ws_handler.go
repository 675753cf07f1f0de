package server

import (
	"net/http"

	"focustracks/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PlaylistEventsHandler upgrades the connection to a websocket and streams
// the playlist's membership events until the client disconnects.
func (h *APIHandler) PlaylistEventsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade websocket", logger.Int64("playlistId", p.ID), logger.ErrorField(err))
		return
	}

	h.hub.Subscribe(p.ID, conn)
	logger.Debug("Playlist event subscriber connected", logger.Int64("playlistId", p.ID))
}
