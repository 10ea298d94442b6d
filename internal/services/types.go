package services

import (
	"encoding/json"
	"time"

	"github.com/ksred/card-check/internal/models"
	"github.com/ksred/card-check/internal/validation"
)

// Field names used in outcomes and error messages
const (
	FieldCardNumber = "card_number"
	FieldExpiry     = "expiry"
	FieldCVV        = "cvv"
)

// User-facing messages for each failed rule
const (
	MsgInvalidCardNumber = "Invalid card number"
	MsgInvalidExpiry     = "Invalid or expired expiry date"
	MsgInvalidCVV        = "CVV must have 3 or 4 digits"
	MsgIncomplete        = "Please fill in all fields"
	MsgValid             = "Card valid! All data is correct."
	MsgInvalid           = "Card invalid!"
)

// VerifyRequest carries the three raw strings collected by a shell
type VerifyRequest struct {
	CardNumber string `json:"card_number" form:"card_number" example:"4532 0151 1283 0366"`
	Expiry     string `json:"expiry" form:"expiry" example:"12/30"`
	CVV        string `json:"cvv" form:"cvv" example:"123"`
}

// VerificationOutcome is the result of one submission
type VerificationOutcome struct {
	Valid           bool     `json:"valid"`
	CardNumberValid bool     `json:"card_number_valid"`
	ExpiryValid     bool     `json:"expiry_valid"`
	CVVValid        bool     `json:"cvv_valid"`
	Status          string   `json:"status,omitempty"`
	RecordID        uint     `json:"record_id,omitempty"`
	Incomplete      bool     `json:"incomplete,omitempty"`
	MissingFields   []string `json:"missing_fields,omitempty"`
	Errors          []string `json:"errors,omitempty"`
}

// Summary returns the headline message a shell shows above the itemised errors
func (o *VerificationOutcome) Summary() string {
	switch {
	case o.Incomplete:
		return MsgIncomplete
	case o.Valid:
		return MsgValid
	default:
		return MsgInvalid
	}
}

// ToJSON converts the outcome to JSON
func (o *VerificationOutcome) ToJSON() ([]byte, error) {
	return json.Marshal(o)
}

// RecordView is a stored record as shown by the web and MCP shells. The CVV is never included.
type RecordView struct {
	ID         uint      `json:"id"`
	CardNumber string    `json:"card_number" example:"************0366"`
	Expiry     string    `json:"expiry" example:"12/30"`
	Status     string    `json:"status,omitempty" example:"valid"`
	VerifiedAt time.Time `json:"verified_at"`
	Display    string    `json:"verified_at_display" example:"15/06/2025 09:30:45"`
}

// NewRecordView builds the view of a record with the card number masked
func NewRecordView(record models.VerificationRecord) RecordView {
	return RecordView{
		ID:         record.ID,
		CardNumber: validation.MaskCardNumber(record.CardNumber),
		Expiry:     record.Expiry,
		Status:     record.StatusString(),
		VerifiedAt: record.VerifiedAt,
		Display:    record.VerifiedAtDisplay(),
	}
}

// NewRecordViews converts a slice of records
func NewRecordViews(records []models.VerificationRecord) []RecordView {
	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, NewRecordView(r))
	}
	return views
}
