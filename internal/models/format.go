package models

import (
	"strings"

	"github.com/dpshade/character-template/internal/errors"
)

// Format selects which field skeleton a template is rendered from
type Format string

const (
	FormatAppearance  Format = "F++"
	FormatScenario    Format = "S++"
	FormatPersonality Format = "P++"
)

// Formats returns every supported format in display order
func Formats() []Format {
	return []Format{FormatAppearance, FormatScenario, FormatPersonality}
}

// Name returns the human-readable name of the format
func (f Format) Name() string {
	switch f {
	case FormatAppearance:
		return "Appearance"
	case FormatScenario:
		return "Scenario"
	case FormatPersonality:
		return "Personality"
	default:
		return ""
	}
}

// Description summarizes what the format captures
func (f Format) Description() string {
	switch f {
	case FormatAppearance:
		return "Appearance & style"
	case FormatScenario:
		return "Role/Scenario details"
	case FormatPersonality:
		return "Personality & logic"
	default:
		return ""
	}
}

// Valid reports whether f is one of the recognized formats
func (f Format) Valid() bool {
	return f.Name() != ""
}

func (f Format) String() string {
	return string(f)
}

// ParseFormat accepts a format code ("F++") or name ("appearance"), case-insensitively.
func ParseFormat(s string) (Format, error) {
	value := strings.TrimSpace(s)
	for _, f := range Formats() {
		if strings.EqualFold(value, string(f)) || strings.EqualFold(value, f.Name()) {
			return f, nil
		}
	}
	return "", errors.InvalidFormatError(s)
}

// FormatInfo is the serializable description of a format
type FormatInfo struct {
	Code        Format `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Info returns the serializable description of f
func (f Format) Info() FormatInfo {
	return FormatInfo{Code: f, Name: f.Name(), Description: f.Description()}
}
