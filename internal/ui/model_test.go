package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/clipboard"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/service"
)

type testEnv struct {
	dir  string
	clip *clipboard.Memory
}

func newTestModel(t *testing.T) (Model, *testEnv) {
	t.Helper()
	env := &testEnv{dir: t.TempDir(), clip: &clipboard.Memory{}}
	svc, err := service.NewService(service.Options{
		ExportDir: env.dir,
		Clipboard: env.clip,
		Version:   "test",
	})
	require.NoError(t, err)

	m, err := NewModel(svc, Options{GlamourStyle: "notty", WordWrap: 60})
	require.NoError(t, err)
	return *m, env
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keySave     = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCopy     = tea.KeyMsg{Type: tea.KeyCtrlY}
	keyRef      = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyGenerate = tea.KeyMsg{Type: tea.KeyCtrlG}
)

func TestGenerateFromForm(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, typed("Mira"), keyEnter)

	text := m.session.Text()
	assert.True(t, strings.HasPrefix(text, `character("Mira") {`))
	assert.Contains(t, text, `Gender("")`)
	assert.Equal(t, text, m.editor.Value())
	assert.Equal(t, m.session.Count(), m.tokens)
	assert.Positive(t, m.tokens.Count)
	assert.False(t, m.form.Active(), "focus moves to the editor after generating")
	assert.Equal(t, "success", m.statusType)
	assert.Contains(t, m.statusMsg, "F++ blank")
}

func TestFormSelectors(t *testing.T) {
	m, _ := newTestModel(t)

	// name -> format, cycle to S++, then example on, then type to original
	m = send(t, m, typed("Kael"), keyTab, keyRight, keyTab, keySpace, keyTab, keyRight)

	req, err := m.form.Request()
	require.NoError(t, err)
	assert.Equal(t, models.GenerationRequest{
		Name:          "Kael",
		Format:        models.FormatScenario,
		Populate:      true,
		CharacterType: models.CharacterOriginal,
	}, req)

	m = send(t, m, keyGenerate)
	assert.Contains(t, m.session.Text(), `Role("Combat Companion")`)
}

func TestFocusCycle(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, nameField, m.form.Focused())

	m = send(t, m, keyTab, keyTab, keyTab)
	assert.Equal(t, typeField, m.form.Focused())
	assert.True(t, m.form.Active())

	m = send(t, m, keyTab)
	assert.False(t, m.form.Active())

	m = send(t, m, keyShiftTab)
	assert.True(t, m.form.Active())
	assert.Equal(t, typeField, m.form.Focused())
}

func TestEditingUpdatesTokenCount(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, keyEnter)
	before := m.tokens.Count

	m = send(t, m, typed(" extra"))
	assert.True(t, m.session.Modified())
	assert.Equal(t, before+1, m.tokens.Count)
	assert.Contains(t, m.View(), "edited")

	// regenerating discards edits
	m = send(t, m, keyGenerate)
	assert.False(t, m.session.Modified())
	assert.Equal(t, before, m.tokens.Count)
}

func TestSave(t *testing.T) {
	m, env := newTestModel(t)

	m = send(t, m, keySave)
	assert.Equal(t, "warning", m.statusType)

	m = send(t, m, typed("Mira Vale"), keyEnter, typed("!"), keySave)
	require.Equal(t, "success", m.statusType, m.statusMsg)

	path := filepath.Join(env.dir, "mira_vale_template.txt")
	assert.Equal(t, "Saved "+path, m.statusMsg)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.session.Text(), string(content))
	assert.True(t, strings.HasSuffix(string(content), "!"))
}

func TestCopy(t *testing.T) {
	m, env := newTestModel(t)
	m = send(t, m, typed("Mira"), keyEnter, keyCopy)

	assert.Equal(t, "Copied to clipboard!", m.statusMsg)
	assert.Equal(t, m.session.Text(), env.clip.Text())
}

func TestReferenceOverlay(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40}, keyRef)
	require.True(t, m.showReference)
	assert.Contains(t, m.View(), "Reference")

	m = send(t, m, keyTab)
	assert.Equal(t, 1, m.section)
	assert.Contains(t, m.viewport.View(), "Positive Traits")

	// typing while the overlay is open does not reach the form
	m = send(t, m, typed("zzz"), keyEsc)
	assert.False(t, m.showReference)
	assert.Empty(t, m.form.Name())
}

func TestClearStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, keyEnter)
	require.NotEmpty(t, m.statusMsg)

	// a stale clear does nothing
	m = send(t, m, clearStatusMsg{id: m.statusID - 1})
	assert.NotEmpty(t, m.statusMsg)

	m = send(t, m, clearStatusMsg{id: m.statusID})
	assert.Empty(t, m.statusMsg)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewShowsForm(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{"Character Template", "Format", "F++", "S++", "P++", "Adapted Character", "Token Count: 0"} {
		assert.Contains(t, view, want)
	}
}
