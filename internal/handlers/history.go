package handlers

import (
	"net/http"
	"strconv"

	"media-pipeline/internal/database"
	"media-pipeline/internal/logging"
)

// HistoryResponse is the result of /api/history.
type HistoryResponse struct {
	Records []database.TransformRecord `json:"records"`
	Count   int                        `json:"count"`
}

// GetHistory returns recent transforms, newest first. Supports kind,
// operation, status and limit query parameters.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSONError(w, "transform history is disabled", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	filter := database.HistoryFilter{
		Kind:      q.Get("kind"),
		Operation: q.Get("operation"),
		Status:    q.Get("status"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeJSONError(w, "invalid limit "+strconv.Quote(v), http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	if filter.Status != "" && filter.Status != database.StatusSuccess && filter.Status != database.StatusError {
		writeJSONError(w, "invalid status "+strconv.Quote(filter.Status), http.StatusBadRequest)
		return
	}

	records, err := h.db.RecentTransforms(r.Context(), filter)
	if err != nil {
		logging.Error("Failed to load transform history: %v", err)
		writeJSONError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []database.TransformRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, HistoryResponse{Records: records, Count: len(records)})
}

// GetStats returns the aggregated history.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSONError(w, "transform history is disabled", http.StatusNotFound)
		return
	}

	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		logging.Error("Failed to load transform stats: %v", err)
		writeJSONError(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, stats)
}
