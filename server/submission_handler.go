package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"focustracks/core/media"
	"focustracks/logger"
	"focustracks/model"

	"github.com/gorilla/mux"
)

// CreateSubmissionHandler accepts a track submission for moderation. Media
// URLs are normalized up front so moderators only ever see canonical URLs,
// and every invalid field is reported in one response.
func (h *APIHandler) CreateSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.SubmitTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": []media.ValidationError{{Field: "title", Message: "title is required"}},
		})
		return
	}

	ref, validationErrs := media.Normalize(media.RawFields{
		YouTubeURL: req.YouTubeURL,
		SpotifyURL: req.SpotifyURL,
		LegacyURL:  req.LegacyURL,
	})
	if ref == nil {
		logger.Debug("Submission rejected by URL validation",
			logger.Int64("userId", userID), logger.ErrorField(media.ErrNoValidMediaURL))
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  media.ErrNoValidMediaURL.Error(),
			"errors": validationErrs,
		})
		return
	}

	submission := &model.Submission{
		UserID:     userID,
		Title:      req.Title,
		Artist:     req.Artist,
		Genre:      req.Genre,
		Duration:   req.Duration,
		YouTubeURL: ref.YouTubeURL,
		SpotifyURL: ref.SpotifyURL,
		LegacyURL:  req.LegacyURL,
		PrimaryURL: ref.PrimaryURL,
		Status:     model.SubmissionStatusPending,
	}
	if err := h.submissionRepo.Create(r.Context(), submission); err != nil {
		logger.Error("Failed to create submission", logger.ErrorField(err))
		http.Error(w, "Failed to create submission", http.StatusInternalServerError)
		return
	}

	logger.Info("Track submitted for review",
		logger.Int64("submissionId", submission.ID),
		logger.Int64("userId", userID),
		logger.String("title", submission.Title))

	resp := map[string]interface{}{
		"submission": submission,
	}
	// Partial success: one field was usable, the other was rejected.
	if len(validationErrs) > 0 {
		resp["warnings"] = validationErrs
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListSubmissionsHandler returns the moderation queue for admins, or the
// caller's own submissions otherwise.
func (h *APIHandler) ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var submissions []*model.Submission
	if IsAdminFromContext(r.Context()) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = model.SubmissionStatusPending
		}
		submissions, err = h.submissionRepo.ListByStatus(r.Context(), status)
	} else {
		submissions, err = h.submissionRepo.ListByUser(r.Context(), userID)
	}
	if err != nil {
		logger.Error("Failed to list submissions", logger.ErrorField(err))
		http.Error(w, "Failed to list submissions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
	})
}

// ApproveSubmissionHandler promotes a pending submission to a catalog track.
// Admin only.
func (h *APIHandler) ApproveSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	submission, ok := h.pendingSubmission(w, r)
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	track := &model.Track{
		Title:       submission.Title,
		Artist:      submission.Artist,
		Genre:       submission.Genre,
		Duration:    submission.Duration,
		YouTubeURL:  submission.YouTubeURL,
		SpotifyURL:  submission.SpotifyURL,
		PrimaryURL:  submission.PrimaryURL,
		SubmittedBy: submission.UserID,
	}
	trackID, err := h.trackRepo.CreateTrack(r.Context(), track)
	if err != nil {
		logger.Error("Failed to create track from submission",
			logger.Int64("submissionId", submission.ID), logger.ErrorField(err))
		http.Error(w, "Failed to approve submission", http.StatusInternalServerError)
		return
	}
	track.ID = trackID

	if err := h.submissionRepo.MarkReviewed(r.Context(), submission.ID,
		model.SubmissionStatusApproved, reviewerID, req.Note, &trackID); err != nil {
		logger.Error("Failed to mark submission approved",
			logger.Int64("submissionId", submission.ID), logger.ErrorField(err))
		http.Error(w, "Failed to approve submission", http.StatusInternalServerError)
		return
	}

	logger.Info("Submission approved",
		logger.Int64("submissionId", submission.ID),
		logger.Int64("trackId", trackID),
		logger.Int64("reviewerId", reviewerID))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"track": track,
	})
}

// RejectSubmissionHandler rejects a pending submission. Admin only.
func (h *APIHandler) RejectSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	submission, ok := h.pendingSubmission(w, r)
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	if err := h.submissionRepo.MarkReviewed(r.Context(), submission.ID,
		model.SubmissionStatusRejected, reviewerID, req.Note, nil); err != nil {
		logger.Error("Failed to mark submission rejected",
			logger.Int64("submissionId", submission.ID), logger.ErrorField(err))
		http.Error(w, "Failed to reject submission", http.StatusInternalServerError)
		return
	}

	logger.Info("Submission rejected",
		logger.Int64("submissionId", submission.ID),
		logger.Int64("reviewerId", reviewerID))

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Submission rejected",
	})
}

// pendingSubmission loads the submission from the route and verifies it is
// still awaiting review. Writes the error response and returns ok=false
// otherwise.
func (h *APIHandler) pendingSubmission(w http.ResponseWriter, r *http.Request) (*model.Submission, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid submission ID format", http.StatusBadRequest)
		return nil, false
	}

	submission, err := h.submissionRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("Failed to get submission", logger.Int64("submissionId", id), logger.ErrorField(err))
		http.Error(w, "Failed to get submission", http.StatusInternalServerError)
		return nil, false
	}
	if submission == nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return nil, false
	}
	if submission.Status != model.SubmissionStatusPending {
		http.Error(w, "Submission has already been reviewed", http.StatusConflict)
		return nil, false
	}
	return submission, true
}
