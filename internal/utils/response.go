package utils

import (
	"encoding/json"
	"net/http"
)

// Payload is the error envelope shared by every endpoint.
type Payload struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// JSONResponse writes body as JSON with the given status.
func JSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ErrorResponse(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	JSONResponse(w, status, Payload{
		Success: false,
		Message: message,
		Code:    code,
		Details: details,
	})
}
