package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/tokens"
)

func TestGenerateOverwritesBuffer(t *testing.T) {
	s := New(nil)
	assert.Empty(t, s.Text())
	assert.Equal(t, 0, s.Count().Count)

	first, err := s.Generate(models.GenerationRequest{Name: "Mira", Format: models.FormatScenario, Populate: true})
	require.NoError(t, err)
	assert.Equal(t, first, s.Text())

	s.Edit("my own notes")
	assert.True(t, s.Modified())
	assert.Equal(t, first, s.Generated())

	second, err := s.Generate(models.GenerationRequest{Name: "Kai", Format: models.FormatPersonality})
	require.NoError(t, err)
	assert.Equal(t, second, s.Text())
	assert.False(t, s.Modified())

	req, ok := s.Request()
	require.True(t, ok)
	assert.Equal(t, "Kai", req.Name)
}

func TestGenerateErrorKeepsBuffer(t *testing.T) {
	s := New(nil)
	s.Edit("keep me")

	_, err := s.Generate(models.GenerationRequest{Name: "Mira", Format: "Q++"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
	assert.Equal(t, "keep me", s.Text())

	_, ok := s.Request()
	assert.False(t, ok)
}

func TestCountReportsStrategy(t *testing.T) {
	s := New(tokens.WhitespaceCounter{})
	s.Edit("a, b.")

	c := s.Count()
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, "whitespace", c.Strategy)

	s = New(nil)
	s.Edit("a, b.")
	assert.Equal(t, models.TokenCount{Count: 4, Strategy: "regex"}, s.Count())
}

func TestReset(t *testing.T) {
	s := New(nil)
	_, err := s.Generate(models.GenerationRequest{Format: models.FormatAppearance})
	require.NoError(t, err)

	s.Reset()
	assert.Empty(t, s.Text())
	assert.Empty(t, s.Generated())
	_, ok := s.Request()
	assert.False(t, ok)
}

func TestConcurrentEdits(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Edit(fmt.Sprintf("edit %d", i))
			_ = s.Count()
		}(i)
	}
	wg.Wait()
	assert.Contains(t, s.Text(), "edit ")
}

func TestNewWithRenderer(t *testing.T) {
	var seen []models.GenerationRequest
	s := NewWithRenderer(func(req models.GenerationRequest) (string, error) {
		seen = append(seen, req)
		if req.Format == "X++" {
			return "", fmt.Errorf("bad format")
		}
		return "rendered " + req.Name, nil
	}, tokens.WhitespaceCounter{})

	text, err := s.Generate(models.GenerationRequest{Name: "Mira", Format: models.FormatPersonality})
	require.NoError(t, err)
	assert.Equal(t, "rendered Mira", text)
	assert.Equal(t, models.TokenCount{Count: 2, Strategy: "whitespace"}, s.Count())

	_, err = s.Generate(models.GenerationRequest{Name: "Kael", Format: "X++"})
	require.Error(t, err)
	assert.Equal(t, "rendered Mira", s.Text())
	assert.Len(t, seen, 2)
}
