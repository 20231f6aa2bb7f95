package httpapi

import (
	"encoding/json"
	"net/http"

	"nlpd/internal/manager"
	"nlpd/pkg/types"
)

// statusClientClosed is logged when the caller went away before a reply.
const statusClientClosed = 499

// statusFor maps a dispatch failure kind to an HTTP status.
func statusFor(kind manager.Kind) int {
	switch kind {
	case manager.KindUnsupportedLanguage, manager.KindInvalidInput:
		return http.StatusBadRequest
	case manager.KindResourceUnavailable:
		return http.StatusNotFound
	case manager.KindTooBusy:
		return http.StatusTooManyRequests
	case manager.KindBuildFailed:
		return http.StatusServiceUnavailable
	case manager.KindInferenceFailed:
		return http.StatusBadGateway
	case manager.KindTimeout:
		return http.StatusGatewayTimeout
	case manager.KindCanceled:
		// The client is still there, so the server is shutting down.
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError classifies err and writes it as a JSON error payload.
func writeError(w http.ResponseWriter, err error) int {
	kind := manager.KindOf(err)
	status := statusFor(kind)
	if kind == manager.KindTooBusy {
		IncrementBackpressure(string(kind))
	}
	writeJSONError(w, status, kind, err.Error())
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind manager.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: string(kind)})
}
