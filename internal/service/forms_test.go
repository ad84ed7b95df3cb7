package service

import (
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePubDate(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	for _, raw := range []string{"2024-05-01T10:30:00Z", "2024-05-01T10:30", "2024-05-01 10:30:00", "2024-05-01 10:30", "2024-05-01T12:30:00+02:00"} {
		got, err := parsePubDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err := parsePubDate("01/05/2024")
	assert.Error(t, err)
}

func TestOptionalID(t *testing.T) {
	assert.Nil(t, optionalID(""))
	assert.Nil(t, optionalID("0"))
	assert.Equal(t, lo.ToPtr(uint(12)), optionalID("12"))
}

func TestValidateForm_Messages(t *testing.T) {
	err := validateForm(&ProfileForm{Username: "x!", Email: "nope"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields["username"], "Enter a valid username")
	assert.Equal(t, "Enter a valid email address.", appErr.Fields["email"])
}

func TestPostFormFrom(t *testing.T) {
	cat := uint(3)
	form := PostFormFrom(&models.Post{
		Title:       "t",
		Text:        "x",
		PubDate:     time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		IsPublished: false,
		CategoryID:  &cat,
	})
	assert.Equal(t, "2024-05-01T10:30", form.PubDate)
	assert.Equal(t, "false", form.IsPublished)
	assert.Equal(t, "3", form.Category)
	assert.Empty(t, form.Location)
	assert.NoError(t, validateForm(&form))
}
