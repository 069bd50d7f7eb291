package server

import (
	"errors"
	"net/http"
	"strconv"

	"rhythmfm/core/feed"
	"rhythmfm/logger"

	"github.com/gorilla/mux"
)

// HomeHandler serves the personalized home feed for the authenticated user.
func (h *APIHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
		return
	}

	homeFeed, err := h.feed.BuildFeed(r.Context(), userID)
	if err != nil {
		logger.Error("failed to build home feed", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load home feed")
		return
	}

	writeSuccess(w, http.StatusOK, "Home feed loaded successfully", homeFeed)
}

// HomeSectionHandler pages through one feed section. Unknown slugs are a 404.
func (h *APIHandler) HomeSectionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
		return
	}

	slug := mux.Vars(r)["slug"]
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	sectionPage, err := h.feed.PageSection(r.Context(), slug, userID, page, pageSize)
	if errors.Is(err, feed.ErrUnknownSection) {
		writeError(w, http.StatusNotFound, "Invalid section slug")
		return
	}
	if err != nil {
		logger.Error("failed to page home feed section",
			logger.Int64("userId", userID), logger.String("slug", slug), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load section")
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, sectionPage)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
