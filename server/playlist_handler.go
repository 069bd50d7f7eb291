package server

import (
	"encoding/json"
	"net/http"

	"rhythmfm/logger"
	"rhythmfm/model"
)

// loadOwnedPlaylist fetches a playlist and enforces ownership. It writes
// the error response itself and returns nil when the caller should stop.
func (h *APIHandler) loadOwnedPlaylist(w http.ResponseWriter, r *http.Request, userID int64) *model.Playlist {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid playlist ID")
		return nil
	}

	playlist, err := h.playlists.GetPlaylist(r.Context(), id)
	if err != nil {
		logger.Error("failed to get playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return nil
	}
	if playlist == nil {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return nil
	}
	if playlist.UserID != userID {
		writeError(w, http.StatusForbidden, msgPermissionDenied)
		return nil
	}
	return playlist
}

// ListPlaylistsHandler returns the caller's playlists.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	playlists, err := h.playlists.PlaylistsByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list playlists", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, playlists)
}

type createPlaylistRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

// CreatePlaylistHandler creates a playlist owned by the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"name": "This field is required"})
		return
	}

	playlist := &model.Playlist{Name: req.Name, UserID: userID, IsPublic: req.IsPublic}
	id, err := h.playlists.CreatePlaylist(r.Context(), playlist)
	if err != nil {
		logger.Error("failed to create playlist", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	playlist.ID = id

	writeSuccess(w, http.StatusCreated, msgCreated, playlist)
}

// GetPlaylistHandler returns a playlist with its tracks. Private playlists
// are visible to their owner only.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid playlist ID")
		return
	}

	playlist, err := h.playlists.GetPlaylist(r.Context(), id)
	if err != nil {
		logger.Error("failed to get playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if playlist == nil {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	if !playlist.IsPublic && playlist.UserID != userID {
		writeError(w, http.StatusForbidden, msgPermissionDenied)
		return
	}

	trackIDs, err := h.playlists.TrackIDs(r.Context(), id)
	if err != nil {
		logger.Error("failed to load playlist tracks", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	tracks, err := h.orderedTracks(r, trackIDs)
	if err != nil {
		logger.Error("failed to load playlist tracks", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, map[string]interface{}{
		"playlist": playlist,
		"tracks":   tracks,
	})
}

// AddPlaylistTrackHandler adds a track to an owned playlist.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	playlist := h.loadOwnedPlaylist(w, r, userID)
	if playlist == nil {
		return
	}

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

	if err := h.playlists.AddTrack(r.Context(), playlist.ID, req.MusicID); err != nil {
		logger.Error("failed to add playlist track",
			logger.Int64("playlistId", playlist.ID), logger.Int64("trackId", req.MusicID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusCreated, msgAdded, nil)
}

// RemovePlaylistTrackHandler removes a track from an owned playlist.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	playlist := h.loadOwnedPlaylist(w, r, userID)
	if playlist == nil {
		return
	}

	trackID, err := pathID(r, "trackId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if err := h.playlists.RemoveTrack(r.Context(), playlist.ID, trackID); err != nil {
		logger.Error("failed to remove playlist track",
			logger.Int64("playlistId", playlist.ID), logger.Int64("trackId", trackID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgRemoved, nil)
}
