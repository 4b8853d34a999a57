package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type envelopeBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeOK(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, envelopeBody{Success: true, Data: data})
}

// writeError writes a non-2xx envelope.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelopeBody{Success: false, Message: message})
}

// writeRejected writes a 200 whose application flag is false.
func writeRejected(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusOK, envelopeBody{Success: false, Message: message, ErrorCode: code})
}
