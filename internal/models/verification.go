package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// VerificationRecord is one logged card check. Rows are append-only.
type VerificationRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CardNumber string    `gorm:"type:text;not null" json:"card_number"`
	Expiry     string    `gorm:"type:text;not null" json:"expiry"`
	CVV        string    `gorm:"column:cvv;type:text;not null" json:"cvv"`
	VerifiedAt time.Time `gorm:"not null" json:"verified_at"`
	// Status is nil for rows written before the status column existed.
	Status *string `gorm:"type:varchar(16)" json:"status"`
}

// DisplayTimeFormat renders VerifiedAt as DD/MM/YYYY HH:MM:SS
const DisplayTimeFormat = "02/01/2006 15:04:05"

// Verification statuses
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// ErrImmutableRecord is returned by the gorm hooks when something tries to change a stored record
var ErrImmutableRecord = errors.New("verification records are immutable")

// TableName ensures consistent table naming
func (VerificationRecord) TableName() string {
	return "verification_records"
}

// StatusFor maps an aggregate result to its status value
func StatusFor(valid bool) string {
	if valid {
		return StatusValid
	}
	return StatusInvalid
}

// IsValidStatus checks if a given status string is valid
func IsValidStatus(s string) bool {
	switch s {
	case StatusValid, StatusInvalid:
		return true
	default:
		return false
	}
}

// StatusString returns the status or an empty string for legacy rows
func (r *VerificationRecord) StatusString() string {
	if r.Status == nil {
		return ""
	}
	return *r.Status
}

// VerifiedAtDisplay formats VerifiedAt for tables and the web page
func (r *VerificationRecord) VerifiedAtDisplay() string {
	return r.VerifiedAt.Format(DisplayTimeFormat)
}

// Validate checks the fields required on insert.
// CardNumber may be empty: input with no digits normalises to "".
func (r *VerificationRecord) Validate() error {
	if r.Expiry == "" {
		return errors.New("expiry cannot be empty")
	}
	if r.CVV == "" {
		return errors.New("cvv cannot be empty")
	}
	if r.Status != nil && !IsValidStatus(*r.Status) {
		return errors.New("invalid status: must be one of valid or invalid")
	}
	return nil
}

// BeforeCreate runs validation before saving a new record
func (r *VerificationRecord) BeforeCreate(tx *gorm.DB) error {
	return r.Validate()
}

// BeforeUpdate rejects every update
func (r *VerificationRecord) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

// BeforeDelete rejects every delete
func (r *VerificationRecord) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableRecord
}
