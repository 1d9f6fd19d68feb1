package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// errorBody is the error envelope returned to JSON clients.
type errorBody struct {
	Error string `json:"error"`
}

// WantsJSON reports whether the client asked for JSON instead of HTML.
// The web UI never sets this; scripted clients hitting protected routes do.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// JSON writes payload as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// JSONError writes a JSON error envelope.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}
