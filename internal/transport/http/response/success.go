package response

import (
	"encoding/json"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type MessageBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
// It sets Content-Type to application/json; charset=utf-8 if not already set.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageBody{Message: msg})
}

// Soft reports a client-correctable outcome as 200 with its message and code.
// Callers must read the body, not only the status.
func Soft(w http.ResponseWriter, err *domain.Error) {
	WriteJSON(w, http.StatusOK, MessageBody{Message: err.Message, Code: err.Code})
}
