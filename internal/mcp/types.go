package mcp

import (
	"encoding/json"

	"github.com/ksred/card-check/internal/services"
)

// VerifyCardResponse represents the result of the verify_card tool
type VerifyCardResponse struct {
	Success   bool                          `json:"success"`
	Message   string                        `json:"message,omitempty"`
	Outcome   *services.VerificationOutcome `json:"outcome,omitempty"`
	Error     string                        `json:"error,omitempty"`
	Retryable bool                          `json:"retryable,omitempty"`
}

// ListVerificationsResponse represents the result of the list_verifications tool
type ListVerificationsResponse struct {
	Verifications []services.RecordView `json:"verifications"`
	Count         int                   `json:"count"`
}

// ToJSON converts the response to JSON
func (r VerifyCardResponse) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ToJSON converts the response to JSON
func (r ListVerificationsResponse) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
