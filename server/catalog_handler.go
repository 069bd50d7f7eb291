package server

import (
	"net/http"

	"rhythmfm/logger"
)

// ListArtistsHandler returns all artists ordered by name.
func (h *APIHandler) ListArtistsHandler(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.ListArtists(r.Context())
	if err != nil {
		logger.Error("failed to list artists", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeSuccess(w, http.StatusOK, msgDataRetrieved, artists)
}

// ListAlbumsHandler returns all albums, newest release first.
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.catalog.ListAlbums(r.Context())
	if err != nil {
		logger.Error("failed to list albums", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeSuccess(w, http.StatusOK, msgDataRetrieved, albums)
}

// ListTagsHandler returns all tags grouped by category.
func (h *APIHandler) ListTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		logger.Error("failed to list tags", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeSuccess(w, http.StatusOK, msgDataRetrieved, tags)
}
