package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/pipeerr"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, ErrorResponse{Error: message})
}

// writeTransformError maps a pipeline error to its status code.
func writeTransformError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForError(err))
	resp := ErrorResponse{Error: err.Error()}
	if kind := pipeerr.KindOf(err); kind != pipeerr.KindUnknown {
		resp.Kind = kind.String()
	}
	writeJSON(w, resp)
}

// statusForError returns the HTTP status for a transform error.
func statusForError(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	switch pipeerr.KindOf(err) {
	case pipeerr.KindInvalidInput, pipeerr.KindInvalidQuality, pipeerr.KindZeroTargetSize:
		return http.StatusBadRequest
	case pipeerr.KindCapacityExceeded:
		return http.StatusRequestEntityTooLarge
	case pipeerr.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case pipeerr.KindRangeOutOfBounds, pipeerr.KindInvalidPartitionCount:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// MethodNotAllowed answers requests whose path matched a route registered for
// other methods.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, "method "+r.Method+" not allowed", http.StatusMethodNotAllowed)
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, statusCode int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"status": status})
}
