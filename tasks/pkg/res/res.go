package res

import (
	"encoding/json"
	"net/http"
)

func Json(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes the {"message": ...} body every failed request gets.
func Error(w http.ResponseWriter, msg string, statusCode int) {
	Json(w, map[string]any{"message": msg}, statusCode)
}
