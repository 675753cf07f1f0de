package server

import (
	"encoding/json"
	"net/http"

	"focustracks/config"
	"focustracks/core/events"
	"focustracks/core/playlist"
	"focustracks/repository"
)

// APIHandler bundles the dependencies of all HTTP handlers.
type APIHandler struct {
	cfg            *config.Config
	userRepo       repository.UserRepository
	trackRepo      repository.TrackRepository
	playlistRepo   repository.PlaylistRepository
	submissionRepo repository.SubmissionRepository
	manager        *playlist.Manager
	hub            *events.Hub
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(
	cfg *config.Config,
	userRepo repository.UserRepository,
	trackRepo repository.TrackRepository,
	playlistRepo repository.PlaylistRepository,
	submissionRepo repository.SubmissionRepository,
	manager *playlist.Manager,
	hub *events.Hub,
) *APIHandler {
	return &APIHandler{
		cfg:            cfg,
		userRepo:       userRepo,
		trackRepo:      trackRepo,
		playlistRepo:   playlistRepo,
		submissionRepo: submissionRepo,
		manager:        manager,
		hub:            hub,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
