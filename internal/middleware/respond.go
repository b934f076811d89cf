package middleware

import (
	"encoding/json"
	"net/http"
)

// writeEnvelope writes a JSON envelope with the given status code.
func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
