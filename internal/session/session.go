// Package session holds the editing buffer of one presentation surface.
package session

import (
	"sync"

	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/renderer"
	"github.com/dpshade/character-template/internal/tokens"
)

// Session is the last generated template plus any edits made to it. A zero Session
// is not usable; create one with New.
type Session struct {
	mu      sync.RWMutex
	render  RenderFunc
	counter tokens.Counter

	request   *models.GenerationRequest
	generated string
	text      string
}

// RenderFunc renders a request to template text
type RenderFunc func(req models.GenerationRequest) (string, error)

// New creates an empty session counting with counter. A nil counter uses the
// default strategy.
func New(counter tokens.Counter) *Session {
	return NewWithRenderer(nil, counter)
}

// NewWithRenderer creates a session that generates through render. A nil render
// uses the plain renderer.
func NewWithRenderer(render RenderFunc, counter tokens.Counter) *Session {
	if render == nil {
		render = renderer.NewRenderer().RenderText
	}
	if counter == nil {
		counter = tokens.RegexCounter{}
	}
	return &Session{
		render:  render,
		counter: counter,
	}
}

// Generate renders req and overwrites the buffer with the result. On error the
// previous buffer is kept.
func (s *Session) Generate(req models.GenerationRequest) (string, error) {
	text, err := s.render(req)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = &req
	s.generated = text
	s.text = text
	return text, nil
}

// Edit replaces the buffer with text
func (s *Session) Edit(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// Text returns the current buffer
func (s *Session) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Generated returns the text of the last Generate, ignoring later edits
func (s *Session) Generated() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generated
}

// Modified reports whether the buffer differs from the last generated text
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text != s.generated
}

// Request returns the request behind the last Generate
func (s *Session) Request() (models.GenerationRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.request == nil {
		return models.GenerationRequest{}, false
	}
	return *s.request, true
}

// Count counts the current buffer
func (s *Session) Count() models.TokenCount {
	text := s.Text()
	return models.TokenCount{
		Count:    s.counter.Count(text),
		Strategy: string(s.counter.Strategy()),
	}
}

// Reset clears the buffer and forgets the last request
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = nil
	s.generated = ""
	s.text = ""
}
