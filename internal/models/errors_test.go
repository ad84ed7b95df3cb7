package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("nope"), fiber.StatusForbidden},
		{"internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("loading: %w", NewNotFoundError("Post", 2)), fiber.StatusNotFound},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewValidationError("Text is required"))
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeValidation))
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewInternalError(errors.New("connection refused"))
	assert.Equal(t, "Internal server error: connection refused", err.Error())
	assert.Equal(t, "connection refused", errors.Unwrap(err).Error())
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{Username: "ada", FirstName: "Ada"}).FullName())
	assert.Equal(t, "ada", (&User{Username: "ada"}).FullName())
}
