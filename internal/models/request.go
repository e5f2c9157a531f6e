package models

import (
	"strings"

	"github.com/dpshade/character-template/internal/errors"
)

// CharacterType records whether a character is adapted from existing media or original.
// It is informational only and never changes rendered text.
type CharacterType string

const (
	CharacterAdapted  CharacterType = "Adapted Character"
	CharacterOriginal CharacterType = "Original Character"
)

// CharacterTypes returns the selectable character types in display order
func CharacterTypes() []CharacterType {
	return []CharacterType{CharacterAdapted, CharacterOriginal}
}

// ParseCharacterType accepts "adapted", "original" or the full label. Empty input
// yields the default, CharacterAdapted.
func ParseCharacterType(s string) (CharacterType, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return CharacterAdapted, nil
	}
	for _, ct := range CharacterTypes() {
		short := strings.Fields(string(ct))[0]
		if strings.EqualFold(value, string(ct)) || strings.EqualFold(value, short) {
			return ct, nil
		}
	}
	return "", errors.NewAppError(errors.ErrCodeInvalidInput, "Invalid character type").
		WithDetails("expected adapted or original").
		WithContext("character_type", s)
}

// GenerationRequest carries the user's choices for one render
type GenerationRequest struct {
	Name          string        `json:"name" yaml:"name"`
	Format        Format        `json:"format" yaml:"format"`
	Populate      bool          `json:"populate" yaml:"populate"`
	CharacterType CharacterType `json:"character_type,omitempty" yaml:"character_type,omitempty"`
}

// NewGenerationRequest builds a request, rejecting unknown formats and character types.
func NewGenerationRequest(name, format string, populate bool, characterType string) (GenerationRequest, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return GenerationRequest{}, err
	}
	ct, err := ParseCharacterType(characterType)
	if err != nil {
		return GenerationRequest{}, err
	}
	return GenerationRequest{
		Name:          name,
		Format:        f,
		Populate:      populate,
		CharacterType: ct,
	}, nil
}

// Mode describes the populate flag the way the UI labels it
func (r GenerationRequest) Mode() string {
	if r.Populate {
		return "example"
	}
	return "blank"
}

// TemplateDocument is one rendered template and the request it came from
type TemplateDocument struct {
	Request GenerationRequest `json:"request"`
	Text    string            `json:"text"`
}
