package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"credit-application/internal/api/handler/dto"
)

// respondEnvelope writes the same error envelope the handlers produce so
// middleware rejections look no different from domain failures.
func respondEnvelope(w http.ResponseWriter, status int, exception, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Exception: exception,
		Details:   []string{detail},
	})
}
