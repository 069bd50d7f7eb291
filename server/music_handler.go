package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rhythmfm/logger"
	"rhythmfm/model"
	"rhythmfm/repository"
	"rhythmfm/storage"

	"github.com/gorilla/mux"
)

// maxUploadSize caps multipart uploads at 100 MiB.
const maxUploadSize = 100 << 20

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

// orderedTracks resolves IDs to full tracks preserving ranking order.
func (h *APIHandler) orderedTracks(r *http.Request, ids []int64) ([]model.Track, error) {
	byID, err := h.catalog.TracksByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	tracks := make([]model.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

// ListTracksHandler returns the newest tracks in the catalog.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	ids, err := h.catalog.TrackIDs(r.Context(),
		repository.TrackQuery{Order: repository.OrderByCreatedAt}, 0, limit)
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	tracks, err := h.orderedTracks(r, ids)
	if err != nil {
		logger.Error("failed to load tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, tracks)
}

// GetTrackHandler returns one track with relations.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.catalog.GetTrack(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, msgNotFoundMusic)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, track)
}

// TrendingTracksHandler returns the most played tracks.
func (h *APIHandler) TrendingTracksHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	if limit < 1 || limit > 200 {
		limit = 20
	}

	ids, err := h.catalog.TrackIDs(r.Context(),
		repository.TrackQuery{Order: repository.OrderByPlayCount}, 0, limit)
	if err != nil {
		logger.Error("failed to list trending tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	tracks, err := h.orderedTracks(r, ids)
	if err != nil {
		logger.Error("failed to load trending tracks", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, tracks)
}

// DiscoverTracksHandler returns tracks carrying the given tag.
func (h *APIHandler) DiscoverTracksHandler(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	if tag == "" {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"tag": "This query parameter is required"})
		return
	}

	tracks, err := h.catalog.SearchTracks(r.Context(), "", r.URL.Query().Get("language"), []string{tag})
	if err != nil {
		logger.Error("failed to discover tracks", logger.String("tag", tag), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, tracks)
}

// SearchTracksHandler matches the query against titles, artists and albums,
// with optional language and tag filters.
func (h *APIHandler) SearchTracksHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	language := r.URL.Query().Get("language")
	var tags []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	tracks, err := h.catalog.SearchTracks(r.Context(), query, language, tags)
	if err != nil {
		logger.Error("failed to search tracks", logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, tracks)
}

// StreamTrackHandler marks a play: the play counter is bumped and the
// listen lands in the caller's recently played history.
func (h *APIHandler) StreamTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.catalog.GetTrack(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, msgNotFoundMusic)
		return
	}

	if err := h.catalog.IncrementPlayCount(r.Context(), id); err != nil {
		logger.Warn("failed to increment play count", logger.Int64("trackId", id), logger.ErrorField(err))
	}
	if userID, ok := userIDFrom(r); ok {
		if err := h.activity.RecordPlay(r.Context(), userID, id); err != nil {
			logger.Warn("failed to record play",
				logger.Int64("userId", userID), logger.Int64("trackId", id), logger.ErrorField(err))
		}
	}

	writeSuccess(w, http.StatusOK, "Music streaming started", track)
}

// UploadTrackHandler accepts a multipart track upload from broadcasters.
// Audio and thumbnail either arrive as files, stored in object storage, or
// as pre-hosted URLs.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"title": "This field is required"})
		return
	}

	audioURL := r.FormValue("audio_url")
	if file, header, err := r.FormFile("audio_file"); err == nil {
		defer file.Close()
		objectName := fmt.Sprintf("audio/%d_%d%s", userID, time.Now().UnixNano(), filepath.Ext(header.Filename))
		audioURL, err = storage.UploadObject(r.Context(), h.cfg, objectName, file, header.Size,
			header.Header.Get("Content-Type"))
		if err != nil {
			logger.Error("failed to upload audio", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to store audio file")
			return
		}
	}
	if audioURL == "" {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"audio_file": "Either audio_file or audio_url is required"})
		return
	}

	thumbURL := r.FormValue("thumb_url")
	if file, header, err := r.FormFile("thumb_file"); err == nil {
		defer file.Close()
		objectName := fmt.Sprintf("thumbs/%d_%d%s", userID, time.Now().UnixNano(), filepath.Ext(header.Filename))
		thumbURL, err = storage.UploadObject(r.Context(), h.cfg, objectName, file, header.Size,
			header.Header.Get("Content-Type"))
		if err != nil {
			logger.Error("failed to upload thumbnail", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to store thumbnail")
			return
		}
	}

	language := r.FormValue("language")
	if language == "" {
		language = model.LanguageEnglish
	}

	track := &model.Track{
		Title:      title,
		TitleAr:    r.FormValue("title_ar"),
		AudioURL:   audioURL,
		ThumbURL:   thumbURL,
		Duration:   queryFormInt(r, "duration"),
		Language:   language,
		UploadedBy: userID,
	}
	if albumID := queryFormInt64(r, "album_id"); albumID > 0 {
		track.AlbumID = &albumID
	}
	for _, id := range parseIDList(r.FormValue("artist_ids")) {
		track.Artists = append(track.Artists, model.Artist{ID: id})
	}
	for _, id := range parseIDList(r.FormValue("tag_ids")) {
		track.Tags = append(track.Tags, model.Tag{ID: id})
	}

	if err := h.catalog.CreateTrack(r.Context(), track); err != nil {
		logger.Error("failed to create track", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create track")
		return
	}

	logger.Info("track uploaded",
		logger.Int64("trackId", track.ID), logger.Int64("userId", userID))
	writeSuccess(w, http.StatusCreated, "Music uploaded successfully", track)
}

func queryFormInt(r *http.Request, key string) int {
	value, _ := strconv.Atoi(r.FormValue(key))
	return value
}

func queryFormInt64(r *http.Request, key string) int64 {
	value, _ := strconv.ParseInt(r.FormValue(key), 10, 64)
	return value
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
