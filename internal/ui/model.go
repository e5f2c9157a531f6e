package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/reference"
	"github.com/dpshade/character-template/internal/service"
	"github.com/dpshade/character-template/internal/session"
)

const (
	statusTimeout   = 3 * time.Second
	defaultWordWrap = 80
	// rows taken by everything except the editor body
	chromeHeight = 12
)

// Options configures the editor
type Options struct {
	// GlamourStyle names the markdown style for reference panels; empty detects it
	GlamourStyle string
	WordWrap     int
	ErrorHandler *errors.TUIErrorHandler
}

// clearStatusMsg clears the status line if no newer status replaced it
type clearStatusMsg struct {
	id int
}

// Model is the template editor
type Model struct {
	service      *service.Service
	session      *session.Session
	errorHandler *errors.TUIErrorHandler

	form     *GenerateForm
	editor   textarea.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	glamourStyle string
	wordWrap     int
	renderer     *glamour.TermRenderer
	rendererWrap int

	showReference bool
	section       int
	tokens        models.TokenCount

	width  int
	height int

	statusMsg  string
	statusType string
	statusID   int
}

// KeyMap defines all key bindings
type KeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	Enter     key.Binding
	Generate  key.Binding
	Save      key.Binding
	Copy      key.Binding
	Reference key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Save, k.Copy, k.Reference, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Right, k.Toggle},
		{k.Enter, k.Generate, k.Save, k.Copy},
		{k.Reference, k.Back, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "previous option"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next option"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "generate (in form)"),
	),
	Generate: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "generate"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy"),
	),
	Reference: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reference"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// NewModel creates a new TUI model
func NewModel(svc *service.Service, opts Options) (*Model, error) {
	initializeColors(opts.GlamourStyle)

	if opts.WordWrap <= 0 {
		opts.WordWrap = defaultWordWrap
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = errors.NewTUIErrorHandler(svc.Logger(), true)
	}

	editor := textarea.New()
	editor.Placeholder = "Press enter to generate a template, then edit it here"
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = false
	editor.SetWidth(80)
	editor.SetHeight(12)

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	m := &Model{
		service:      svc,
		session:      svc.NewSession(),
		errorHandler: opts.ErrorHandler,
		form:         NewGenerateForm(),
		editor:       editor,
		viewport:     vp,
		help:         help.New(),
		keys:         keys,
		glamourStyle: opts.GlamourStyle,
		wordWrap:     opts.WordWrap,
	}
	m.tokens = m.session.Count()

	if err := m.ensureRenderer(opts.WordWrap); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "Failed to create markdown renderer")
	}
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func clearStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.showReference {
			m.renderReference()
		}
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
			m.statusType = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.form.name, cmd = m.form.name.Update(msg)
	cmds = append(cmds, cmd)
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showReference {
		return m.handleReferenceKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Generate):
		return m, m.generate()
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copy()
	case key.Matches(msg, m.keys.Reference):
		m.showReference = true
		m.renderReference()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.form.Active() {
		return m.handleFormKey(msg)
	}
	return m.handleEditorKey(msg)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		if !m.form.nextField() {
			m.focusEditor()
		}
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.form.prevField()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m, m.generate()
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Prev):
		m.editor.Blur()
		m.form.focusLast()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.editor.Blur()
		m.form.focused = nameField
		m.form.SetActive(true)
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if value := m.editor.Value(); value != m.session.Text() {
		m.session.Edit(value)
		m.tokens = m.session.Count()
	}
	return m, cmd
}

func (m Model) handleReferenceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sections := reference.Sections()

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Reference):
		m.showReference = false
		return m, nil
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Right):
		m.section = (m.section + 1) % len(sections)
		m.renderReference()
		return m, nil
	case key.Matches(msg, m.keys.Prev), key.Matches(msg, m.keys.Left):
		m.section = (m.section + len(sections) - 1) % len(sections)
		m.renderReference()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) focusEditor() {
	m.form.SetActive(false)
	m.editor.Focus()
}

// generate renders the form's request into the editor, replacing any edits
func (m *Model) generate() tea.Cmd {
	req, err := m.form.Request()
	if err != nil {
		return m.setError(err)
	}
	text, err := m.session.Generate(req)
	if err != nil {
		return m.setError(err)
	}

	m.editor.SetValue(text)
	m.tokens = m.session.Count()
	m.focusEditor()

	return m.setStatus(fmt.Sprintf("Generated %s %s template", req.Format, req.Mode()), "success")
}

func (m *Model) save() tea.Cmd {
	text := m.session.Text()
	if text == "" {
		return m.setStatus("Nothing to save yet", "warning")
	}

	name := m.form.Name()
	if req, ok := m.session.Request(); ok {
		name = req.Name
	}
	res, err := m.service.Export(service.ExportRequest{Name: name, Text: text})
	if err != nil {
		return m.setError(err)
	}
	return m.setStatus("Saved "+res.Path, "success")
}

func (m *Model) copy() tea.Cmd {
	text := m.session.Text()
	if text == "" {
		return m.setStatus("Nothing to copy yet", "warning")
	}
	status, err := m.service.Copy(text)
	if err != nil {
		return m.setError(err)
	}
	return m.setStatus(status, "success")
}

func (m *Model) setStatus(text, statusType string) tea.Cmd {
	m.statusID++
	m.statusMsg = text
	m.statusType = statusType
	return clearStatusCmd(m.statusID)
}

func (m *Model) setError(err error) tea.Cmd {
	m.errorHandler.HandleError(err)
	icon, color := m.errorHandler.GetErrorStyle(err)
	message := strings.ReplaceAll(m.errorHandler.FormatError(err), "\n", " ")

	m.statusID++
	m.statusMsg = lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render(icon + " " + message)
	m.statusType = "error"
	return clearStatusCmd(m.statusID)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	editorHeight := height - chromeHeight
	if editorHeight < 3 {
		editorHeight = 3
	}
	m.editor.SetWidth(max(width-4, 20))
	m.editor.SetHeight(editorHeight)

	m.viewport.Width = max(min(width-6, 100), 20)
	m.viewport.Height = max(height-8, 5)
}

// ensureRenderer rebuilds the glamour renderer when the wrap width changes
func (m *Model) ensureRenderer(wrap int) error {
	if m.renderer != nil && m.rendererWrap == wrap {
		return nil
	}
	r, err := reference.NewTermRenderer(m.glamourStyle, wrap)
	if err != nil {
		return err
	}
	m.renderer = r
	m.rendererWrap = wrap
	return nil
}

func (m *Model) renderReference() {
	section := reference.Sections()[m.section]

	md, err := m.service.ReferenceMarkdown(string(section))
	if err != nil {
		m.viewport.SetContent(m.errorHandler.FormatError(err))
		return
	}

	wrap := min(m.wordWrap, m.viewport.Width-2)
	if err := m.ensureRenderer(wrap); err != nil {
		m.viewport.SetContent(md)
		return
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		m.viewport.SetContent(md)
		return
	}
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

// View renders the model
func (m Model) View() string {
	if m.showReference {
		return m.referenceView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Character Template"))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n\n")

	editorStyle := StyleEditor
	if !m.form.Active() {
		editorStyle = StyleEditorFocused
	}
	b.WriteString(editorStyle.Render(m.editor.View()))
	b.WriteString("\n")

	counter := StyleTokenCount.Render(fmt.Sprintf("Token Count: %d", m.tokens.Count))
	b.WriteString(counter)
	b.WriteString(StyleTextDim.Render(fmt.Sprintf(" (%s)", m.tokens.Strategy)))
	if m.session.Modified() {
		b.WriteString(StyleTextMuted.Render("  edited"))
	}
	b.WriteString("\n")

	if m.statusMsg != "" {
		if m.statusType == "error" {
			b.WriteString(m.statusMsg)
		} else {
			b.WriteString(CreateStatus(m.statusMsg, m.statusType))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) referenceView() string {
	sections := reference.Sections()
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = strings.ToUpper(string(s[:1])) + string(s[1:])
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		StyleSubtitle.Render("Reference"),
		CreateTabs(names, m.section, true),
	)
	footer := StyleTextDim.Render(truncate("tab/←/→ section • ↑/↓ scroll • esc close", m.viewport.Width))
	content := StyleOverlay.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer))

	if m.width == 0 || m.height == 0 {
		return content
	}
	return CenterModal(content, m.width, m.height)
}
