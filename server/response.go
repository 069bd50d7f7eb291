package server

import (
	"encoding/json"
	"net/http"

	"rhythmfm/logger"
)

// Shared response messages.
const (
	msgDataRetrieved    = "Data retrieved successfully"
	msgCreated          = "Created successfully"
	msgAdded            = "Added successfully"
	msgRemoved          = "Removed successfully"
	msgPermissionDenied = "You do not have permission to perform this action"
	msgNotFoundMusic    = "Music not found"
	msgInternalError    = "Internal server error"
)

// envelope is the standard API response shape. Every success payload is
// {success:true, message, data}; errors carry success:false plus an
// optional errors detail.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeErrorDetails(w http.ResponseWriter, status int, message string, errors interface{}) {
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: errors})
}
