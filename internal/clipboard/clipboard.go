package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/dpshade/character-template/internal/errors"
)

// Copier places text on a clipboard
type Copier interface {
	Copy(text string) error
}

// utility is one external program that reads clipboard content from stdin
type utility struct {
	name string
	args []string
}

var utilities = map[string][]utility{
	"darwin": {{name: "pbcopy"}},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
	"windows": {{name: "cmd", args: []string{"/c", "clip"}}},
}

// System copies through the platform clipboard utilities, trying each in order
type System struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args []string, stdin string) error
}

// NewSystem returns a Copier for the running platform
func NewSystem() *System {
	return &System{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func runCommand(name string, args []string, stdin string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}

// Available reports whether at least one utility is installed
func (s *System) Available() bool {
	for _, u := range utilities[s.goos] {
		if _, err := s.lookPath(u.name); err == nil {
			return true
		}
	}
	return false
}

// Copy tries every installed utility and stops at the first success
func (s *System) Copy(text string) error {
	var lastErr error
	for _, u := range utilities[s.goos] {
		if _, err := s.lookPath(u.name); err != nil {
			continue
		}
		if err := s.run(u.name, u.args, text); err != nil {
			lastErr = fmt.Errorf("%s failed: %w", u.name, err)
			continue
		}
		return nil
	}

	if lastErr != nil {
		return errors.Wrap(lastErr, errors.ErrCodeClipboardUnavailable, "Clipboard utilities available but failed")
	}
	return errors.NewAppError(errors.ErrCodeClipboardUnavailable, "No clipboard utility found").
		WithDetails(InstallInstructions(s.goos)).
		WithContext("os", s.goos)
}

// InstallInstructions explains how to get a clipboard utility on goos
func InstallInstructions(goos string) string {
	switch goos {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", goos)
	}
}

// Memory is an in-process clipboard used when no terminal clipboard exists
type Memory struct {
	mu   sync.Mutex
	text string
}

// Copy stores text
func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

// Text returns the last copied text
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// CopyWithStatus copies text and returns the status line to show the user
func CopyWithStatus(c Copier, text string) (string, error) {
	if err := c.Copy(text); err != nil {
		return "", err
	}
	return "Copied to clipboard!", nil
}
