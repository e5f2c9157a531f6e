package reference

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dpshade/character-template/internal/models"
)

// Section selects a part of the catalogue
type Section string

const (
	SectionAll        Section = ""
	SectionTraits     Section = "traits"
	SectionAppearance Section = "appearance"
	SectionGuides     Section = "guides"
	SectionUsage      Section = "usage"
)

// Sections lists the selectable sections in display order
func Sections() []Section {
	return []Section{SectionUsage, SectionTraits, SectionAppearance, SectionGuides}
}

var traitIcons = map[TraitCategory]string{
	Positive: "💙",
	Neutral:  "🟠",
	Negative: "❤️‍🔥",
}

var appearanceIcons = []string{"👤", "💇", "🧍", "🧴"}

// Markdown renders a section as markdown. SectionAll renders every section.
func Markdown(section Section) (string, error) {
	var b strings.Builder
	switch section {
	case SectionAll:
		for i, s := range Sections() {
			if i > 0 {
				b.WriteString("\n---\n\n")
			}
			md, _ := Markdown(s)
			b.WriteString(md)
		}
	case SectionUsage:
		writeUsage(&b)
	case SectionTraits:
		writeTraits(&b)
	case SectionAppearance:
		writeAppearance(&b)
	case SectionGuides:
		writeGuides(&b)
	default:
		return "", fmt.Errorf("unknown reference section %q", section)
	}
	return b.String(), nil
}

func writeUsage(b *strings.Builder) {
	b.WriteString("# How to Use\n\n")
	b.WriteString("1. Enter your **character's name**.\n")
	b.WriteString("2. Choose the **template format**:\n")
	for _, f := range models.Formats() {
		fmt.Fprintf(b, "   - `%s` → %s\n", f, f.Description())
	}
	b.WriteString("3. Pick if it's an **Original** or **Adapted** character.\n")
	b.WriteString("4. **Generate** the template.\n")
	b.WriteString("5. Edit, copy, save, or use as needed!\n\n")
	b.WriteString("_Optional: use the example to autofill a sample character._\n")
}

func writeTraits(b *strings.Builder) {
	b.WriteString("# Personality Traits Reference\n\n")
	for _, t := range traits {
		fmt.Fprintf(b, "## %s %s\n\n%s\n\n", traitIcons[t.Category], t.Title, strings.Join(t.Words, ", "))
	}
}

func writeAppearance(b *strings.Builder) {
	b.WriteString("# Appearance Description Reference\n\n")
	for i, s := range appearance {
		fmt.Fprintf(b, "## %s %s\n\n%s\n\n", appearanceIcons[i%len(appearanceIcons)], s.Title, s.Prompts)
	}
}

func writeGuides(b *strings.Builder) {
	b.WriteString("# Helpful Writing Guides\n\n")
	for _, g := range guides {
		fmt.Fprintf(b, "- [%s](%s)\n", g.Title, g.URL)
	}
}

// NewTermRenderer builds a glamour renderer. An explicit style wins; otherwise the
// style follows the terminal background and color profile.
func NewTermRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	if style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	var styleOption glamour.TermRendererOption
	switch {
	case profile == termenv.Ascii:
		styleOption = glamour.WithStandardStyle("notty")
	case lipgloss.HasDarkBackground():
		styleOption = glamour.WithStandardStyle("dark")
	default:
		styleOption = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// Render renders a section for the terminal
func Render(section Section, style string, wordWrap int) (string, error) {
	md, err := Markdown(section)
	if err != nil {
		return "", err
	}
	r, err := NewTermRenderer(style, wordWrap)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}
