package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "character_template.txt"},
		{"   ", "character_template.txt"},
		{`"!?"`, "character_template.txt"},
		{"Mira", "mira_template.txt"},
		{"Mira Vale", "mira_vale_template.txt"},
		{"  Dr. Kestrel--Quinn ", "dr_kestrel_quinn_template.txt"},
		{"Zoë 2", "zoë_2_template.txt"},
		{"../etc/passwd", "etc_passwd_template.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.name))
		})
	}
}

func TestSaveTemplateWritesTextUnchanged(t *testing.T) {
	dir := t.TempDir()
	text := "character(\"Mira\") {\n    Role(\"\")\n}"

	path, err := SaveTemplate(dir, "Mira", text)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mira_template.txt"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(got))
}

func TestSaveTemplateOverwrites(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.SaveTemplate("Mira", "first")
	require.NoError(t, err)
	res, err := s.SaveTemplate("Mira", "second")
	require.NoError(t, err)

	assert.Equal(t, 6, res.Bytes)
	assert.Len(t, res.SHA256, 64)

	text, err := s.ReadText(filepath.Base(res.Path))
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestSaveToCreatesDirectories(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	res, err := s.SaveTo(filepath.Join("nested", "out.txt"), "x")
	require.NoError(t, err)
	assert.FileExists(t, res.Path)
}

func TestReadTextMissingFile(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.ReadText("nope.txt")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestDocumentRoundTrip(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	doc := models.TemplateDocument{
		Request: models.GenerationRequest{
			Name:          "Mira",
			Format:        models.FormatScenario,
			Populate:      true,
			CharacterType: models.CharacterOriginal,
		},
		Text: "character(\"Mira\") {\n    Role(\"Combat Companion\")\n}",
	}

	res, err := s.SaveDocument(doc, models.TokenCount{Count: 14, Strategy: "regex"})
	require.NoError(t, err)
	assert.Equal(t, "mira_template.md", filepath.Base(res.Path))

	meta, text, err := s.LoadDocument(res.Path)
	require.NoError(t, err)
	assert.Equal(t, doc.Text, text)
	assert.Equal(t, "Mira", meta.Name)
	assert.Equal(t, models.FormatScenario, meta.Format)
	assert.True(t, meta.Populate)
	assert.Equal(t, models.CharacterOriginal, meta.CharacterType)
	assert.Equal(t, 14, meta.Tokens)
	assert.Equal(t, "regex", meta.Strategy)
	assert.False(t, meta.SavedAt.IsZero())
}

func TestLoadDocumentRejectsPlainText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("no frontmatter"), 0644))

	s, err := NewStorage(dir)
	require.NoError(t, err)

	_, _, err = s.LoadDocument("plain.txt")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStorageFailure))
}
