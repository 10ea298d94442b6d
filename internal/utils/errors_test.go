package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("With field", func(t *testing.T) {
		err := &ValidationError{
			Field:   "cvv",
			Message: "CVV must have 3 or 4 digits",
		}

		expected := "validation error on field 'cvv': CVV must have 3 or 4 digits"
		assert.Equal(t, expected, err.Error())
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("Without field", func(t *testing.T) {
		err := &ValidationError{
			Message: "input is invalid",
		}

		assert.Equal(t, "validation error: input is invalid", err.Error())
		assert.True(t, IsValidationError(err))
	})
}

func TestIncompleteSubmissionError(t *testing.T) {
	t.Run("With fields", func(t *testing.T) {
		err := &IncompleteSubmissionError{Fields: []string{"card_number", "cvv"}}

		assert.Equal(t, "incomplete submission: missing card_number, cvv", err.Error())
		assert.True(t, IsIncompleteSubmission(err))
		assert.False(t, IsStorageError(err))
	})

	t.Run("Without fields", func(t *testing.T) {
		err := &IncompleteSubmissionError{}

		assert.Equal(t, "incomplete submission: please fill in all fields", err.Error())
	})

	t.Run("Wrapped", func(t *testing.T) {
		err := fmt.Errorf("web form: %w", &IncompleteSubmissionError{Fields: []string{"cvv"}})

		var target *IncompleteSubmissionError
		assert.True(t, errors.As(err, &target))
		assert.Equal(t, []string{"cvv"}, target.Fields)
	})
}

func TestStorageError(t *testing.T) {
	cause := errors.New("database is locked")

	t.Run("With cause", func(t *testing.T) {
		err := &StorageError{Operation: "append", Cause: cause}

		assert.Equal(t, "storage error during append: database is locked", err.Error())
		assert.True(t, errors.Is(err, ErrStorage))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Without cause", func(t *testing.T) {
		err := &StorageError{Operation: "ensure schema"}

		assert.Equal(t, "storage error during ensure schema", err.Error())
		assert.True(t, IsStorageError(err))
	})

	t.Run("Wrap nil", func(t *testing.T) {
		assert.NoError(t, WrapStorageError("append", nil))
	})

	t.Run("Wrap keeps existing storage error", func(t *testing.T) {
		inner := WrapStorageError("create table", cause)
		outer := WrapStorageError("ensure schema", fmt.Errorf("migration failed: %w", inner))

		var target *StorageError
		assert.True(t, errors.As(outer, &target))
		assert.Equal(t, "create table", target.Operation)
		assert.True(t, errors.Is(outer, cause))
	})
}
