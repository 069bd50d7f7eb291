package server

import (
	"net/http"

	"rhythmfm/logger"
)

// ListAdsHandler returns active advertisements, optionally filtered by
// placement.
func (h *APIHandler) ListAdsHandler(w http.ResponseWriter, r *http.Request) {
	placement := r.URL.Query().Get("placement")

	ads, err := h.ads.ActiveAds(r.Context(), placement)
	if err != nil {
		logger.Error("failed to list ads", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, ads)
}

// AdImpressionHandler records that an ad was shown.
func (h *APIHandler) AdImpressionHandler(w http.ResponseWriter, r *http.Request) {
	h.recordAdEvent(w, r, "impression")
}

// AdClickHandler records that an ad was clicked.
func (h *APIHandler) AdClickHandler(w http.ResponseWriter, r *http.Request) {
	h.recordAdEvent(w, r, "click")
}

func (h *APIHandler) recordAdEvent(w http.ResponseWriter, r *http.Request, event string) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ad ID")
		return
	}

	ad, err := h.ads.GetAd(r.Context(), id)
	if err != nil {
		logger.Error("failed to get ad", logger.Int64("adId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if ad == nil {
		writeError(w, http.StatusNotFound, "Advertisement not found")
		return
	}

	if event == "click" {
		err = h.ads.IncrementClick(r.Context(), id)
	} else {
		err = h.ads.IncrementImpression(r.Context(), id)
	}
	if err != nil {
		logger.Error("failed to record ad event",
			logger.Int64("adId", id), logger.String("event", event), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, "Recorded successfully", nil)
}
