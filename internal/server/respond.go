package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/muurk/printbridge/internal/logging"
	"github.com/muurk/printbridge/internal/printing"
	"go.uber.org/zap"
)

// errEmptyBody marks a request with no body at all. Handlers whose body is
// optional treat it as an empty object.
var errEmptyBody = errors.New("request body is empty")

// writeJSON serializes payload with the JSON content type. Map keys are
// emitted in alphabetical order.
func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

// writeResult wraps a payload in the success envelope.
func writeResult(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  result,
		"success": true,
	})
}

// writeError wraps a message in the failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":   message,
		"success": false,
	})
}

// writeBackendError maps a backend failure onto the response envelope.
// Unknown named printers are the caller's mistake (404); everything else is
// a backend fault reported as a structured 500 with the cause in "message".
func writeBackendError(w http.ResponseWriter, op string, err error) {
	var notFound *printing.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}

	logging.Error("Backend call failed",
		zap.String("op", op),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error":   fmt.Sprintf("%s failed", op),
		"message": err.Error(),
		"success": false,
	})
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return fmt.Errorf("invalid JSON body: %v", err)
}
