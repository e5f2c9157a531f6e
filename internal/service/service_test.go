package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/clipboard"
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/metrics"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/reference"
	"github.com/dpshade/character-template/internal/tokens"
)

func newTestService(t *testing.T, counter tokens.Counter) (*Service, *clipboard.Memory) {
	t.Helper()
	clip := &clipboard.Memory{}
	svc, err := NewService(Options{
		Counter:   counter,
		ExportDir: t.TempDir(),
		Clipboard: clip,
		Version:   "test",
	})
	require.NoError(t, err)
	return svc, clip
}

func TestRender(t *testing.T) {
	svc, _ := newTestService(t, nil)

	doc, err := svc.Render(models.GenerationRequest{Name: "Mira", Format: models.FormatScenario, Populate: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Text, `character("Mira") {`))
	assert.Contains(t, doc.Text, `Role("Combat Companion")`)

	_, err = svc.Render(models.GenerationRequest{Name: "Mira", Format: "X++"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestCharacterTypeDoesNotChangeText(t *testing.T) {
	svc, _ := newTestService(t, nil)

	adapted, err := svc.Render(models.GenerationRequest{Name: "Mira", Format: models.FormatAppearance, CharacterType: models.CharacterAdapted})
	require.NoError(t, err)
	original, err := svc.Render(models.GenerationRequest{Name: "Mira", Format: models.FormatAppearance, CharacterType: models.CharacterOriginal})
	require.NoError(t, err)

	assert.Equal(t, adapted.Text, original.Text)
}

func TestCountTokensUsesConfiguredStrategy(t *testing.T) {
	svc, _ := newTestService(t, tokens.WhitespaceCounter{})

	assert.Equal(t, models.TokenCount{Count: 2, Strategy: "whitespace"}, svc.CountTokens("a, b."))

	tc, err := svc.CountTokensWith("a, b.", "regex")
	require.NoError(t, err)
	assert.Equal(t, models.TokenCount{Count: 4, Strategy: "regex"}, tc)

	tc, err = svc.CountTokensWith("a, b.", "")
	require.NoError(t, err)
	assert.Equal(t, "whitespace", tc.Strategy)

	_, err = svc.CountTokensWith("a", "sentencepiece")
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	svc, _ := newTestService(t, nil)

	infos := svc.Formats()
	require.Len(t, infos, 3)
	assert.Equal(t, models.FormatAppearance, infos[0].Code)
	assert.Equal(t, "Role/Scenario details", infos[1].Description)
	assert.Equal(t, models.FormatPersonality, infos[2].Code)
}

func TestTraitsAndSearch(t *testing.T) {
	svc, _ := newTestService(t, nil)

	lists, err := svc.Traits("neutral")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, reference.Neutral, lists[0].Category)

	_, err = svc.Traits("mixed")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	matches := svc.SearchTraits("", "negative", 5)
	require.Len(t, matches, 5)
	for _, m := range matches {
		assert.Equal(t, reference.Negative, m.Category)
	}

	assert.Empty(t, svc.SearchTraits("qqqqzz", "", 0))
}

func TestExport(t *testing.T) {
	svc, _ := newTestService(t, nil)

	res, err := svc.Export(ExportRequest{Name: "Mira Vale", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "mira_vale_template.txt", filepath.Base(res.Path))

	content, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	text, err := svc.ReadTemplate("mira_vale_template.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	res, err = svc.Export(ExportRequest{Name: "", Text: "x", Path: "custom.txt"})
	require.NoError(t, err)
	assert.Equal(t, "custom.txt", filepath.Base(res.Path))

	req := models.GenerationRequest{Name: "Mira", Format: models.FormatPersonality}
	res, err = svc.Export(ExportRequest{Name: "Mira", Text: "a, b.", Request: &req, WithMeta: true})
	require.NoError(t, err)
	content, err = os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "format: P++")
	assert.Contains(t, string(content), "tokens: 4")
}

func TestCopy(t *testing.T) {
	svc, clip := newTestService(t, nil)

	status, err := svc.Copy("template text")
	require.NoError(t, err)
	assert.Equal(t, "Copied to clipboard!", status)
	assert.Equal(t, "template text", clip.Text())
}

func TestSessionUsesServiceCounter(t *testing.T) {
	svc, _ := newTestService(t, tokens.WhitespaceCounter{})
	sess := svc.NewSession()
	sess.Edit("a, b.")
	assert.Equal(t, "whitespace", sess.Count().Strategy)
}

func TestSessionGenerateIsCounted(t *testing.T) {
	svc, _ := newTestService(t, nil)
	counter := metrics.RenderCounter("S++", "example", metrics.OutcomeSuccess)
	failed := metrics.RenderCounter("X++", "blank", metrics.OutcomeError)
	before, beforeFailed := testutil.ToFloat64(counter), testutil.ToFloat64(failed)

	sess := svc.NewSession()
	_, err := sess.Generate(models.GenerationRequest{Name: "Mira", Format: models.FormatScenario, Populate: true})
	require.NoError(t, err)
	_, err = sess.Generate(models.GenerationRequest{Name: "Mira", Format: "X++"})
	require.Error(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
}

func TestMessagesJSONDoesNotRender(t *testing.T) {
	svc, _ := newTestService(t, nil)
	counter := metrics.RenderCounter("P++", "blank", metrics.OutcomeSuccess)
	before := testutil.ToFloat64(counter)

	out, err := svc.MessagesJSON("Personality {}")
	require.NoError(t, err)
	assert.Contains(t, out, `"content": "Personality {}"`)
	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestHealth(t *testing.T) {
	svc, _ := newTestService(t, nil)

	h := svc.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "test", h.Version)
	assert.Equal(t, "regex", h.TokenStrategy)
	assert.Equal(t, []string{"F++", "S++", "P++"}, h.Formats)
	assert.True(t, h.Clipboard)
}

func TestSuggestedFilename(t *testing.T) {
	svc, _ := newTestService(t, nil)
	assert.Equal(t, "character_template.txt", svc.SuggestedFilename(""))
}
