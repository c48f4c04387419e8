// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// AllowOriginHeader is set to "*" on every response of the upload endpoint.
const AllowOriginHeader = "Access-Control-Allow-Origin"

// Envelope is the standard API response envelope.
type Envelope struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// AllowAnyOrigin grants cross-origin access to the response.
func AllowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set(AllowOriginHeader, "*")
}

// OK writes a 200 response carrying the public URL of the stored content.
func OK(w http.ResponseWriter, message, url string) {
	JSON(w, http.StatusOK, Envelope{Message: message, URL: url})
}

// Error writes an error response with the given status and message.
// detail is omitted from the body when empty.
func Error(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, Envelope{Message: message, Error: detail})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message, "")
}

// MethodNotAllowed writes a 405 response.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
}

// InternalError writes a 500 response.
func InternalError(w http.ResponseWriter, message, detail string) {
	Error(w, http.StatusInternalServerError, message, detail)
}
