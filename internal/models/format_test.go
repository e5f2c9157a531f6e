package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"F++", FormatAppearance},
		{"f++", FormatAppearance},
		{"appearance", FormatAppearance},
		{" S++ ", FormatScenario},
		{"Scenario", FormatScenario},
		{"P++", FormatPersonality},
		{"PERSONALITY", FormatPersonality},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "X++", "F+", "appearances"} {
		_, err := ParseFormat(input)
		require.Error(t, err, input)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat), input)
	}
}

func TestFormatsOrderAndValidity(t *testing.T) {
	assert.Equal(t, []Format{FormatAppearance, FormatScenario, FormatPersonality}, Formats())
	for _, f := range Formats() {
		assert.True(t, f.Valid())
		assert.NotEmpty(t, f.Description())
	}
	assert.False(t, Format("Q++").Valid())
}

func TestNewGenerationRequest(t *testing.T) {
	req, err := NewGenerationRequest("Mira", "p++", true, "original")
	require.NoError(t, err)
	assert.Equal(t, FormatPersonality, req.Format)
	assert.Equal(t, CharacterOriginal, req.CharacterType)
	assert.Equal(t, "example", req.Mode())

	req, err = NewGenerationRequest("", "S++", false, "")
	require.NoError(t, err)
	assert.Equal(t, CharacterAdapted, req.CharacterType)
	assert.Equal(t, "blank", req.Mode())

	_, err = NewGenerationRequest("Mira", "F++", false, "borrowed")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}
