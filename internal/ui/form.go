package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/character-template/internal/models"
)

// Form field indices
const (
	nameField = iota
	formatField
	exampleField
	typeField
	fieldCount
)

// GenerateForm collects the choices behind one render
type GenerateForm struct {
	name     textinput.Model
	formats  []models.Format
	types    []models.CharacterType
	format   int
	example  bool
	charType int
	focused  int
	active   bool
}

// NewGenerateForm creates a form focused on the name field
func NewGenerateForm() *GenerateForm {
	name := textinput.New()
	name.Placeholder = "Character name"
	name.CharLimit = 100
	name.Width = 40
	name.Focus()

	return &GenerateForm{
		name:    name,
		formats: models.Formats(),
		types:   models.CharacterTypes(),
		focused: nameField,
		active:  true,
	}
}

// Update handles a key for the focused field. It reports whether the key was used.
func (f *GenerateForm) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch f.focused {
	case nameField:
		var cmd tea.Cmd
		f.name, cmd = f.name.Update(msg)
		return true, cmd

	case formatField:
		switch {
		case key.Matches(msg, keys.Left):
			f.format = (f.format + len(f.formats) - 1) % len(f.formats)
			return true, nil
		case key.Matches(msg, keys.Right):
			f.format = (f.format + 1) % len(f.formats)
			return true, nil
		}

	case exampleField:
		if key.Matches(msg, keys.Toggle, keys.Left, keys.Right) {
			f.example = !f.example
			return true, nil
		}

	case typeField:
		if key.Matches(msg, keys.Left, keys.Right, keys.Toggle) {
			f.charType = (f.charType + 1) % len(f.types)
			return true, nil
		}
	}
	return false, nil
}

// SetActive moves keyboard focus into or out of the form
func (f *GenerateForm) SetActive(active bool) {
	f.active = active
	f.syncFocus()
}

// Active reports whether the form holds keyboard focus
func (f *GenerateForm) Active() bool {
	return f.active
}

// Focused returns the index of the focused field
func (f *GenerateForm) Focused() int {
	return f.focused
}

// nextField moves focus forward and reports false when it runs off the end
func (f *GenerateForm) nextField() bool {
	if f.focused == fieldCount-1 {
		return false
	}
	f.focused++
	f.syncFocus()
	return true
}

// prevField moves focus back and reports false at the first field
func (f *GenerateForm) prevField() bool {
	if f.focused == 0 {
		return false
	}
	f.focused--
	f.syncFocus()
	return true
}

// focusLast focuses the last field, used when shift+tab leaves the editor
func (f *GenerateForm) focusLast() {
	f.focused = fieldCount - 1
	f.active = true
	f.syncFocus()
}

func (f *GenerateForm) syncFocus() {
	if f.active && f.focused == nameField {
		f.name.Focus()
	} else {
		f.name.Blur()
	}
}

// Request builds the generation request from the current choices
func (f *GenerateForm) Request() (models.GenerationRequest, error) {
	return models.NewGenerationRequest(
		strings.TrimSpace(f.name.Value()),
		string(f.formats[f.format]),
		f.example,
		string(f.types[f.charType]),
	)
}

// Name returns the entered name
func (f *GenerateForm) Name() string {
	return strings.TrimSpace(f.name.Value())
}

// View renders the form rows
func (f *GenerateForm) View() string {
	var b strings.Builder

	b.WriteString(f.label(nameField, "Name"))
	b.WriteString(f.name.View())
	b.WriteString("\n")

	formatOpts := make([]string, len(f.formats))
	for i, format := range f.formats {
		formatOpts[i] = string(format)
	}
	b.WriteString(f.label(formatField, "Format"))
	b.WriteString(CreateTabs(formatOpts, f.format, f.isFocused(formatField)))
	b.WriteString(" ")
	b.WriteString(StyleTextDim.Render(f.formats[f.format].Description()))
	b.WriteString("\n")

	b.WriteString(f.label(exampleField, "Fill example"))
	exampleIdx := 0
	if f.example {
		exampleIdx = 1
	}
	b.WriteString(CreateTabs([]string{"Blank", "Example"}, exampleIdx, f.isFocused(exampleField)))
	b.WriteString("\n")

	typeOpts := make([]string, len(f.types))
	for i, ct := range f.types {
		typeOpts[i] = string(ct)
	}
	b.WriteString(f.label(typeField, "Character type"))
	b.WriteString(CreateTabs(typeOpts, f.charType, f.isFocused(typeField)))

	return b.String()
}

func (f *GenerateForm) isFocused(field int) bool {
	return f.active && f.focused == field
}

func (f *GenerateForm) label(field int, text string) string {
	if f.isFocused(field) {
		return StyleFormLabel.Foreground(ColorSecondary).Render("▶ " + text)
	}
	return StyleFormLabel.Render("  " + text)
}
