package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/clipboard"
)

type scriptedPrompter struct {
	inputs   []string
	selects  []string
	confirms []bool
}

func (p *scriptedPrompter) Input(message, def string) (string, error) {
	if len(p.inputs) == 0 {
		return def, nil
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *scriptedPrompter) Select(message string, options []string, def string) (string, error) {
	if len(p.selects) == 0 {
		return def, nil
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, nil
}

func (p *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	if len(p.confirms) == 0 {
		return def, nil
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

type harness struct {
	dir    string
	config string
	clip   *clipboard.Memory
	prompt *scriptedPrompter
	stdin  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	content := fmt.Sprintf("export:\n  dir: %q\nlog:\n  level: error\nui:\n  glamour_style: notty\n", dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return &harness{dir: dir, config: cfgPath, clip: &clipboard.Memory{}, prompt: &scriptedPrompter{}}
}

func (h *harness) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := NewCLI(Options{
		Version:   "test",
		Out:       &stdout,
		Err:       &stderr,
		In:        strings.NewReader(h.stdin),
		Prompter:  h.prompt,
		Clipboard: h.clip,
	})
	code := c.Run(context.Background(), append([]string{"--config", h.config}, args...))
	return code, stdout.String(), stderr.String()
}

func TestGenerate(t *testing.T) {
	h := newHarness(t)

	code, out, errOut := h.run(t, "generate", "--name", "Mira", "--format", "F++", "--example")
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, `character("Mira") {`))
	assert.Contains(t, out, `HairColor("Jet black with a healthy sheen.")`)
	assert.Contains(t, errOut, "Token Count:")
	assert.Contains(t, errOut, "(regex)")
}

func TestGenerateBlankScenario(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "generate", "-f", "scenario")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `Role("")`)
	assert.NotContains(t, out, "Gender(")
}

func TestGenerateInvalidFormat(t *testing.T) {
	h := newHarness(t)

	code, out, errOut := h.run(t, "generate", "--name", "Mira", "--format", "X++")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Invalid format type")
}

func TestGenerateJSON(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "generate", "--format", "P++", "--json")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, `"role": "system"`)
}

func TestGenerateSaveAndCopy(t *testing.T) {
	h := newHarness(t)

	code, out, errOut := h.run(t, "generate", "--name", "Mira Vale", "--format", "P++", "--save", "--copy")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "Copied to clipboard!")
	assert.Equal(t, strings.TrimSuffix(out, "\n"), h.clip.Text())

	path := filepath.Join(h.dir, "mira_vale_template.txt")
	assert.Contains(t, errOut, "Saved "+path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, h.clip.Text(), string(content))
}

func TestGenerateOut(t *testing.T) {
	h := newHarness(t)

	target := filepath.Join(h.dir, "nested", "mira.txt")
	code, _, errOut := h.run(t, "generate", "--format", "F++", "--out", target)
	require.Equal(t, 0, code, errOut)
	_, err := os.Stat(target)
	assert.NoError(t, err)
}

func TestGenerateInteractive(t *testing.T) {
	h := newHarness(t)
	h.prompt.inputs = []string{"Kael"}
	h.prompt.selects = []string{formatOption("S++"), "Original Character"}
	h.prompt.confirms = []bool{true}

	code, out, errOut := h.run(t, "generate", "--interactive")
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, `character("Kael") {`))
	assert.Contains(t, out, `Role("Combat Companion")`)
}

func TestCountStdin(t *testing.T) {
	h := newHarness(t)
	h.stdin = "a, b."

	code, out, _ := h.run(t, "count")
	require.Equal(t, 0, code)
	assert.Equal(t, "Token Count: 4 (regex)\n", out)

	code, out, _ = h.run(t, "count", "-", "--strategy", "whitespace")
	require.Equal(t, 0, code)
	assert.Equal(t, "Token Count: 2 (whitespace)\n", out)

	code, out, _ = h.run(t, "count", "--json")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"count":4,"strategy":"regex"}`, out)
}

func TestCountFile(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(h.dir, "t.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello, world!"), 0644))

	code, out, _ := h.run(t, "count", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "Token Count: 4 (regex)\n", out)

	code, _, errOut := h.run(t, "count", filepath.Join(h.dir, "missing.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "File not found")

	code, _, errOut = h.run(t, "count", "--strategy", "bpe", path)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}

func TestCountWatchNeedsFile(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run(t, "count", "--watch")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--watch needs a file argument")
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, zap.NewNop(), func() { calls.Add(1) })
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("one two"), 0644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestFormats(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "formats")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "F++")
	assert.Contains(t, lines[1], "Appearance & style")
	assert.Contains(t, lines[3], "P++")
}

func TestSkeleton(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "skeleton", "S++", "--paths")
	require.Equal(t, 0, code)
	assert.Equal(t, "Role\nSpecialty\nCombatStyle\nScenarioTags\nSampleDialogue\n", out)

	code, out, _ = h.run(t, "skeleton", "personality")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "code: P++")
	assert.Contains(t, out, "name: Personality")

	code, _, errOut := h.run(t, "skeleton", "Z++")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Invalid format type")
}

func TestReference(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "reference", "guides", "--raw")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "docs.google.com")

	code, out, errOut := h.run(t, "reference", "traits")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Positive Traits")

	code, _, _ = h.run(t, "reference", "lore")
	assert.Equal(t, 1, code)
}

func TestTraits(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run(t, "traits", "neutral")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "(34)")

	code, out, _ = h.run(t, "traits", "search", "loyal", "--limit", "3")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.LessOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "Loyal"))

	code, _, errOut := h.run(t, "traits", "search", "qqqqzz")
	require.Equal(t, 0, code)
	assert.Contains(t, errOut, "No traits match")
}

func TestVersionSkipsConfig(t *testing.T) {
	var stdout bytes.Buffer
	c := NewCLI(Options{Version: "1.2.3", Out: &stdout, Err: &bytes.Buffer{}})
	code := c.Run(context.Background(), []string{"--config", "/does/not/exist.yml", "version"})
	require.Equal(t, 0, code)
	assert.Equal(t, "chargen version 1.2.3\n", stdout.String())
}

func TestMissingConfigFile(t *testing.T) {
	var stderr bytes.Buffer
	c := NewCLI(Options{Out: &bytes.Buffer{}, Err: &stderr})
	code := c.Run(context.Background(), []string{"--config", "/does/not/exist.yml", "formats"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Configuration file not found")
}
