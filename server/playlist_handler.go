package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"focustracks/cache"
	"focustracks/core/events"
	"focustracks/core/playlist"
	"focustracks/logger"
	"focustracks/model"

	"github.com/gorilla/mux"
)

// GetPlaylistsHandler returns the caller's playlists.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlists, err := h.playlistRepo.GetPlaylistsByUserID(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list playlists", logger.Int64("userId", userID), logger.ErrorField(err))
		http.Error(w, "Failed to list playlists", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playlists": playlists,
	})
}

// CreatePlaylistHandler creates a playlist owned by the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Playlist name is required", http.StatusBadRequest)
		return
	}

	p := &model.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	id, err := h.playlistRepo.CreatePlaylist(r.Context(), p)
	if err != nil {
		logger.Error("Failed to create playlist", logger.ErrorField(err))
		http.Error(w, "Failed to create playlist", http.StatusInternalServerError)
		return
	}
	p.ID = id

	writeJSON(w, http.StatusCreated, p)
}

// GetPlaylistHandler returns a playlist with its ordered tracks.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	tracks, err := h.orderedTracks(r.Context(), p.ID)
	if err != nil {
		logger.Error("Failed to load playlist tracks", logger.Int64("playlistId", p.ID), logger.ErrorField(err))
		http.Error(w, "Failed to load playlist tracks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, model.PlaylistWithTracks{
		Playlist: *p,
		Tracks:   tracks,
	})
}

// UpdatePlaylistHandler updates a playlist's name and description.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	p.Description = req.Description

	if err := h.playlistRepo.UpdatePlaylist(r.Context(), p); err != nil {
		logger.Error("Failed to update playlist", logger.Int64("playlistId", p.ID), logger.ErrorField(err))
		http.Error(w, "Failed to update playlist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// DeletePlaylistHandler deletes a playlist and all of its memberships.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.manager.RemovePlaylist(r.Context(), p.ID); err != nil {
		logger.Error("Failed to remove playlist memberships", logger.Int64("playlistId", p.ID), logger.ErrorField(err))
		http.Error(w, "Failed to delete playlist", http.StatusInternalServerError)
		return
	}
	if err := h.playlistRepo.DeletePlaylist(r.Context(), p.ID); err != nil {
		logger.Error("Failed to delete playlist", logger.Int64("playlistId", p.ID), logger.ErrorField(err))
		http.Error(w, "Failed to delete playlist", http.StatusInternalServerError)
		return
	}

	h.afterMembershipChange(r.Context(), events.Event{
		Type:       events.EventPlaylistDeleted,
		PlaylistID: p.ID,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Playlist deleted successfully",
	})
}

// AddPlaylistTrackHandler appends a track to the end of a playlist.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req struct {
		TrackID int64 `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), req.TrackID)
	if err != nil {
		http.Error(w, "Failed to get track information", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	membership, err := h.manager.AddTrack(r.Context(), p.ID, req.TrackID)
	if err != nil {
		if errors.Is(err, playlist.ErrDuplicateMembership) {
			http.Error(w, "Track is already in the playlist", http.StatusConflict)
			return
		}
		logger.Error("Failed to add track to playlist",
			logger.Int64("playlistId", p.ID), logger.Int64("trackId", req.TrackID), logger.ErrorField(err))
		http.Error(w, "Failed to add track to playlist", http.StatusInternalServerError)
		return
	}

	h.afterMembershipChange(r.Context(), events.Event{
		Type:       events.EventTrackAdded,
		PlaylistID: p.ID,
		TrackID:    req.TrackID,
		Position:   membership.Position,
	})

	writeJSON(w, http.StatusCreated, membership)
}

// RemovePlaylistTrackHandler removes a track and closes the position gap.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track ID format", http.StatusBadRequest)
		return
	}

	if err := h.manager.RemoveTrack(r.Context(), p.ID, trackID); err != nil {
		if errors.Is(err, playlist.ErrMembershipNotFound) {
			http.Error(w, "Track is not in the playlist", http.StatusNotFound)
			return
		}
		logger.Error("Failed to remove track from playlist",
			logger.Int64("playlistId", p.ID), logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to remove track from playlist", http.StatusInternalServerError)
		return
	}

	h.afterMembershipChange(r.Context(), events.Event{
		Type:       events.EventTrackRemoved,
		PlaylistID: p.ID,
		TrackID:    trackID,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Track removed from playlist successfully",
	})
}

// MovePlaylistTrackHandler moves a track to a new position, shifting the
// tracks in between. Positions beyond the end are clamped to the end.
func (h *APIHandler) MovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["trackId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track ID format", http.StatusBadRequest)
		return
	}

	var req struct {
		Position int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	members, err := h.manager.MoveTrack(r.Context(), p.ID, trackID, req.Position)
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrMembershipNotFound):
			http.Error(w, "Track is not in the playlist", http.StatusNotFound)
		case errors.Is(err, playlist.ErrInvalidPosition):
			http.Error(w, "Position must be a positive integer", http.StatusBadRequest)
		default:
			logger.Error("Failed to move track",
				logger.Int64("playlistId", p.ID), logger.Int64("trackId", trackID), logger.ErrorField(err))
			http.Error(w, "Failed to move track", http.StatusInternalServerError)
		}
		return
	}

	h.afterMembershipChange(r.Context(), events.Event{
		Type:       events.EventTrackMoved,
		PlaylistID: p.ID,
		TrackID:    trackID,
		Position:   req.Position,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": members,
	})
}

// ownedPlaylist loads the playlist from the route and verifies the caller
// owns it. Writes the error response and returns ok=false otherwise.
func (h *APIHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (*model.Playlist, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	playlistID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid playlist ID format", http.StatusBadRequest)
		return nil, false
	}

	p, err := h.playlistRepo.GetPlaylistByID(r.Context(), playlistID)
	if err != nil {
		logger.Error("Failed to get playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		http.Error(w, "Failed to get playlist", http.StatusInternalServerError)
		return nil, false
	}
	if p == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return nil, false
	}
	if p.UserID != userID {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return nil, false
	}
	return p, true
}

// orderedTracks resolves a playlist's memberships to full track records in
// position order, using the cache when possible.
func (h *APIHandler) orderedTracks(ctx context.Context, playlistID int64) ([]*model.Track, error) {
	if cached, err := cache.GetPlaylistTracks(ctx, playlistID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		logger.Warn("Playlist cache read failed", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
	}

	members, err := h.manager.Memberships(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.TrackID)
	}
	byID, err := h.trackRepo.GetTracksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	tracks := make([]*model.Track, 0, len(members))
	for _, m := range members {
		if track, ok := byID[m.TrackID]; ok {
			tracks = append(tracks, track)
		}
	}

	if err := cache.SetPlaylistTracks(ctx, playlistID, tracks); err != nil {
		logger.Warn("Playlist cache write failed", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
	}
	return tracks, nil
}

// afterMembershipChange invalidates the playlist cache and notifies
// websocket subscribers.
func (h *APIHandler) afterMembershipChange(ctx context.Context, event events.Event) {
	if err := cache.InvalidatePlaylistTracks(ctx, event.PlaylistID); err != nil {
		logger.Warn("Playlist cache invalidation failed",
			logger.Int64("playlistId", event.PlaylistID), logger.ErrorField(err))
	}
	h.hub.Broadcast(event)
}
