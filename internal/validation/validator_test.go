package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSession struct {
	Date          string `json:"date" validate:"required,date"`
	StartTime     string `json:"startTime" validate:"required,clock"`
	DurationHours int    `json:"durationHours" validate:"blockhours"`
}

type sampleRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Sessions []sampleSession `json:"sessions" validate:"dive"`
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	ok := sampleRequest{
		Email:    "a@b.co",
		Sessions: []sampleSession{{Date: "2026-05-01", StartTime: "09:30", DurationHours: 6}},
	}
	assert.NoError(t, v.Struct(ok))

	bad := sampleRequest{
		Email:    "nope",
		Sessions: []sampleSession{{Date: "01/05/2026", StartTime: "9am", DurationHours: 5}},
	}
	err := v.Struct(bad)
	require.Error(t, err)

	details := v.Details(err)
	assert.Equal(t, "email", details["email"])
	assert.Equal(t, "date", details["sessions[0].date"])
	assert.Equal(t, "clock", details["sessions[0].startTime"])
	assert.Equal(t, "blockhours", details["sessions[0].durationHours"])
}

func TestDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, New().Details(assert.AnError))
}
