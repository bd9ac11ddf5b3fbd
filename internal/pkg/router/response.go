package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Every response body shares this envelope.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Meta    map[string]any    `json:"meta,omitempty"`
	Error   map[string]string `json:"error,omitempty"`
}

// Reply is a handler result carrying its own message and optional data.
//
// Handlers may also return any value; it becomes data with a generic message
// unless it implements Message() string, StatusCode() int or Meta().
type Reply struct {
	Msg    string
	Data   any
	Status int
}

// Message returns the envelope message.
func (r *Reply) Message() string { return r.Msg }

// StatusCode returns the HTTP status, 200 when unset.
func (r *Reply) StatusCode() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}

func writeError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, envelope{Message: msg}, code)
}
