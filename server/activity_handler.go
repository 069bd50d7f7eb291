package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"rhythmfm/logger"
	"rhythmfm/repository"
)

type trackRef struct {
	MusicID int64 `json:"music_id"`
}

// activityPreviewLimit bounds the flat favorites / recently played lists.
// Deeper browsing goes through the home feed section pager.
const activityPreviewLimit = 50

// ListFavoritesHandler returns the user's favorites, newest first.
func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	ids, err := h.activity.FavoriteTrackIDs(r.Context(), userID, 0, activityPreviewLimit)
	if err != nil {
		logger.Error("failed to list favorites", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	tracks, err := h.orderedTracks(r, ids)
	if err != nil {
		logger.Error("failed to load favorite tracks", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, tracks)
}

// AddFavoriteHandler adds a track to the user's favorites.
func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	var req trackRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MusicID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.catalog.GetTrack(r.Context(), req.MusicID)
	if err != nil {
		logger.Error("failed to get track", logger.Int64("trackId", req.MusicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, msgNotFoundMusic)
		return
	}

	err = h.activity.AddFavorite(r.Context(), userID, req.MusicID)
	if errors.Is(err, repository.ErrAlreadyFavorited) {
		writeError(w, http.StatusBadRequest, "Music already in favorites")
		return
	}
	if err != nil {
		logger.Error("failed to add favorite",
			logger.Int64("userId", userID), logger.Int64("trackId", req.MusicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusCreated, msgAdded, nil)
}

// RemoveFavoriteHandler removes a track from the user's favorites.
func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	trackID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	err = h.activity.RemoveFavorite(r.Context(), userID, trackID)
	if errors.Is(err, repository.ErrNotFavorited) {
		writeError(w, http.StatusNotFound, "Music not in favorites")
		return
	}
	if err != nil {
		logger.Error("failed to remove favorite",
			logger.Int64("userId", userID), logger.Int64("trackId", trackID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgRemoved, nil)
}

// ListRecentlyPlayedHandler returns the user's listening history, most
// recent play first.
func (h *APIHandler) ListRecentlyPlayedHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	ids, err := h.activity.RecentlyPlayedIDs(r.Context(), userID, 0, activityPreviewLimit)
	if err != nil {
		logger.Error("failed to list recently played", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	tracks, err := h.orderedTracks(r, ids)
	if err != nil {
		logger.Error("failed to load recently played tracks", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, tracks)
}
