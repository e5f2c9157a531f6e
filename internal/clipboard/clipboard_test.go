package clipboard

import (
	stderrors "errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/errors"
)

type call struct {
	name  string
	stdin string
}

func fakeSystem(goos string, installed map[string]bool, failing map[string]bool) (*System, *[]call) {
	var calls []call
	return &System{
		goos: goos,
		lookPath: func(name string) (string, error) {
			if installed[name] {
				return "/usr/bin/" + name, nil
			}
			return "", exec.ErrNotFound
		},
		run: func(name string, args []string, stdin string) error {
			calls = append(calls, call{name: name, stdin: stdin})
			if failing[name] {
				return stderrors.New("exit status 1")
			}
			return nil
		},
	}, &calls
}

func TestCopyUsesFirstInstalledUtility(t *testing.T) {
	s, calls := fakeSystem("linux", map[string]bool{"xclip": true, "xsel": true}, nil)

	require.NoError(t, s.Copy("hello"))
	require.Len(t, *calls, 1)
	assert.Equal(t, call{name: "xclip", stdin: "hello"}, (*calls)[0])
	assert.True(t, s.Available())
}

func TestCopyFallsBackAfterFailure(t *testing.T) {
	s, calls := fakeSystem("linux",
		map[string]bool{"wl-copy": true, "xsel": true},
		map[string]bool{"wl-copy": true})

	require.NoError(t, s.Copy("hello"))
	require.Len(t, *calls, 2)
	assert.Equal(t, "xsel", (*calls)[1].name)
}

func TestCopyAllFailing(t *testing.T) {
	s, _ := fakeSystem("darwin", map[string]bool{"pbcopy": true}, map[string]bool{"pbcopy": true})

	err := s.Copy("hello")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeClipboardUnavailable))
	assert.Contains(t, err.Error(), "pbcopy failed")
}

func TestCopyNothingInstalled(t *testing.T) {
	s, calls := fakeSystem("linux", nil, nil)

	err := s.Copy("hello")
	require.Error(t, err)
	assert.Empty(t, *calls)
	assert.False(t, s.Available())

	appErr := errors.GetAppError(err)
	assert.Equal(t, errors.ErrCodeClipboardUnavailable, appErr.Code)
	assert.Contains(t, appErr.Details, "xclip")
}

func TestUnsupportedPlatform(t *testing.T) {
	s, _ := fakeSystem("plan9", map[string]bool{"pbcopy": true}, nil)
	assert.False(t, s.Available())
	assert.Error(t, s.Copy("x"))
	assert.Contains(t, InstallInstructions("plan9"), "not supported")
}

func TestInstallInstructions(t *testing.T) {
	assert.Contains(t, InstallInstructions("linux"), "wl-clipboard")
	assert.Contains(t, InstallInstructions("darwin"), "pbcopy")
	assert.Contains(t, InstallInstructions("windows"), "clip")
}

func TestMemoryCopyWithStatus(t *testing.T) {
	m := &Memory{}
	status, err := CopyWithStatus(m, "template")
	require.NoError(t, err)
	assert.Equal(t, "Copied to clipboard!", status)
	assert.Equal(t, "template", m.Text())
}
