package server

import (
	"fmt"
	"net/http"
	"strconv"

	"focustracks/core/events"
	"focustracks/logger"
	"focustracks/repository"
	"focustracks/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxCoverUploadSize bounds cover art uploads to 5 MiB.
const maxCoverUploadSize = 5 << 20

// GetTracksHandler returns catalog tracks, optionally filtered by genre and
// a search term matching title or artist.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	filter := repository.TrackFilter{
		Genre:  r.URL.Query().Get("genre"),
		Search: r.URL.Query().Get("q"),
	}

	tracks, err := h.trackRepo.ListTracks(r.Context(), filter)
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		http.Error(w, "Failed to list tracks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": tracks,
	})
}

// GetTrackHandler returns a single track by ID.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track ID format", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), trackID)
	if err != nil {
		logger.Error("Failed to get track", logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to get track", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// UploadTrackCoverHandler stores cover art for a track in object storage.
// Admin only.
func (h *APIHandler) UploadTrackCoverHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track ID format", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(r.Context(), trackID)
	if err != nil {
		http.Error(w, "Failed to get track", http.StatusInternalServerError)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(maxCoverUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		http.Error(w, "Cover file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	objectName := fmt.Sprintf("%d-%s-%s", trackID, uuid.NewString()[:8], header.Filename)
	objectPath, err := storage.UploadCover(r.Context(), h.cfg.MinioBucket, objectName, file, header.Size, contentType)
	if err != nil {
		logger.Error("Failed to upload cover", logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to upload cover", http.StatusInternalServerError)
		return
	}

	if err := h.trackRepo.UpdateTrackCoverArtPath(r.Context(), trackID, objectPath); err != nil {
		logger.Error("Failed to update cover path", logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to update track", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"coverArtPath": objectPath,
	})
}

// DeleteTrackHandler removes a track from the catalog. Admin only. The
// track is first removed from every playlist through the membership manager
// so positions stay dense and caches and subscribers are kept current; the
// foreign key cascade is only a backstop.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track ID format", http.StatusBadRequest)
		return
	}

	affected, err := h.manager.RemoveTrackFromAllPlaylists(r.Context(), trackID)
	if err != nil {
		logger.Error("Failed to remove track from playlists",
			logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to delete track", http.StatusInternalServerError)
		return
	}
	for _, playlistID := range affected {
		h.afterMembershipChange(r.Context(), events.Event{
			Type:       events.EventTrackRemoved,
			PlaylistID: playlistID,
			TrackID:    trackID,
		})
	}

	if err := h.trackRepo.DeleteTrack(r.Context(), trackID); err != nil {
		if err == repository.ErrNotFound {
			http.Error(w, "Track not found", http.StatusNotFound)
			return
		}
		logger.Error("Failed to delete track", logger.Int64("trackId", trackID), logger.ErrorField(err))
		http.Error(w, "Failed to delete track", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Track deleted successfully",
	})
}
