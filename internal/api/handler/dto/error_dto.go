package dto

import "time"

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Exception string    `json:"exception"`
	Details   []string  `json:"details"`
}
