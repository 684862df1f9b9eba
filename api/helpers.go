package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marchal/fieldplanner/internal/schedule"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// respondScheduleError maps scheduling errors to HTTP statuses. Validation
// failures name the offending field; storage failures get the generic
// message so internals never leak to the UI.
func respondScheduleError(w http.ResponseWriter, err error) {
	var ve *schedule.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, schedule.ErrNotFound):
		http.Error(w, "intervention not found", http.StatusNotFound)
	default:
		logger.Error("scheduling operation failed", "err", err)
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
	}
}
