package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/clipboard"
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/metrics"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/reference"
	"github.com/dpshade/character-template/internal/renderer"
	"github.com/dpshade/character-template/internal/session"
	"github.com/dpshade/character-template/internal/skeleton"
	"github.com/dpshade/character-template/internal/storage"
	"github.com/dpshade/character-template/internal/tokens"
)

// Service provides the business logic shared by the CLI, HTTP API and TUI
type Service struct {
	renderer  *renderer.Renderer
	counter   tokens.Counter
	storage   *storage.Storage
	clipboard clipboard.Copier
	log       *zap.Logger
	version   string
	startedAt time.Time
}

// Options configures a Service. Zero values select defaults: the regex counter,
// the working directory for exports, the system clipboard and a no-op logger.
type Options struct {
	Counter   tokens.Counter
	ExportDir string
	Clipboard clipboard.Copier
	Logger    *zap.Logger
	Version   string
}

// HealthStatus is reported by the health command
type HealthStatus struct {
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	Uptime        string   `json:"uptime"`
	TokenStrategy string   `json:"token_strategy"`
	Formats       []string `json:"formats"`
	ExportDir     string   `json:"export_dir"`
	Clipboard     bool     `json:"clipboard"`
}

// NewService creates a new service instance
func NewService(opts Options) (*Service, error) {
	store, err := storage.NewStorage(opts.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if opts.Counter == nil {
		opts.Counter = tokens.RegexCounter{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.NewSystem()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &Service{
		renderer:  renderer.NewRenderer(),
		counter:   opts.Counter,
		storage:   store,
		clipboard: opts.Clipboard,
		log:       opts.Logger,
		version:   opts.Version,
		startedAt: time.Now(),
	}, nil
}

// Render renders a request into a template document
func (s *Service) Render(req models.GenerationRequest) (models.TemplateDocument, error) {
	doc, err := s.renderer.RenderRequest(req)
	metrics.ObserveRender(string(req.Format), req.Mode(), err)
	if err != nil {
		s.log.Debug("render rejected", zap.String("format", string(req.Format)), zap.Error(err))
		return models.TemplateDocument{}, err
	}

	s.log.Debug("rendered template",
		zap.String("format", string(req.Format)),
		zap.String("mode", req.Mode()),
		zap.String("character_type", string(req.CharacterType)),
		zap.Int("bytes", len(doc.Text)),
	)
	return doc, nil
}

// MessagesJSON encodes rendered text as a chat message array without rendering again
func (s *Service) MessagesJSON(text string) (string, error) {
	return renderer.EncodeMessages(text)
}

// Strategy returns the configured token strategy
func (s *Service) Strategy() tokens.Strategy {
	return s.counter.Strategy()
}

// Counter returns the configured token counter
func (s *Service) Counter() tokens.Counter {
	return s.counter
}

// CountTokens counts text with the configured strategy
func (s *Service) CountTokens(text string) models.TokenCount {
	return s.count(s.counter, text)
}

// CountTokensWith counts text with a named strategy. An empty name uses the
// configured strategy rather than the package default.
func (s *Service) CountTokensWith(text, strategy string) (models.TokenCount, error) {
	if strategy == "" {
		return s.CountTokens(text), nil
	}
	counter, err := tokens.New(strategy)
	if err != nil {
		return models.TokenCount{}, err
	}
	return s.count(counter, text), nil
}

func (s *Service) count(counter tokens.Counter, text string) models.TokenCount {
	tc := models.TokenCount{
		Count:    counter.Count(text),
		Strategy: string(counter.Strategy()),
	}
	metrics.ObserveTokens(tc.Strategy, tc.Count)
	return tc
}

// Formats returns metadata for every template format in display order
func (s *Service) Formats() []models.FormatInfo {
	formats := models.Formats()
	infos := make([]models.FormatInfo, len(formats))
	for i, f := range formats {
		infos[i] = f.Info()
	}
	return infos
}

// Skeleton returns the field tree for a format
func (s *Service) Skeleton(format models.Format) ([]skeleton.Node, error) {
	return skeleton.For(format)
}

// FieldPaths returns the dotted leaf paths for a format
func (s *Service) FieldPaths(format models.Format) ([]string, error) {
	return skeleton.FieldPaths(format)
}

// Traits returns the trait lists, optionally narrowed to one category
func (s *Service) Traits(category string) ([]reference.TraitList, error) {
	if category == "" {
		return reference.Traits(), nil
	}
	list, ok := reference.TraitsFor(reference.TraitCategory(category))
	if !ok {
		return nil, errors.NotFoundError(fmt.Sprintf("Trait category '%s'", category))
	}
	return []reference.TraitList{list}, nil
}

// SearchTraits fuzzy-searches trait words. category narrows the result and a
// positive limit caps it.
func (s *Service) SearchTraits(query, category string, limit int) []reference.TraitMatch {
	matches := reference.SearchTraits(query)
	var out []reference.TraitMatch
	for _, m := range matches {
		if category != "" && string(m.Category) != category {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if out == nil {
		out = []reference.TraitMatch{}
	}
	return out
}

// Appearance returns the appearance description sections
func (s *Service) Appearance() []reference.AppearanceSection {
	return reference.Appearance()
}

// Guides returns the writing guide links
func (s *Service) Guides() []reference.Guide {
	return reference.Guides()
}

// ReferenceMarkdown returns a reference section as markdown
func (s *Service) ReferenceMarkdown(section string) (string, error) {
	md, err := reference.Markdown(reference.Section(section))
	if err != nil {
		return "", errors.NotFoundError(fmt.Sprintf("Reference section '%s'", section))
	}
	return md, nil
}

// ExportRequest describes a template to write to disk
type ExportRequest struct {
	Name string
	Text string
	// Path overrides the suggested file name when set
	Path string
	// Request, when set together with WithMeta, is recorded as YAML frontmatter
	Request  *models.GenerationRequest
	WithMeta bool
}

// Export writes a template to the export directory
func (s *Service) Export(req ExportRequest) (*storage.SaveResult, error) {
	var (
		res *storage.SaveResult
		err error
	)

	switch {
	case req.WithMeta:
		genReq := models.GenerationRequest{Name: req.Name}
		if req.Request != nil {
			genReq = *req.Request
		}
		doc := models.TemplateDocument{Request: genReq, Text: req.Text}
		res, err = s.storage.SaveDocument(doc, s.CountTokens(req.Text))
	case req.Path != "":
		res, err = s.storage.SaveTo(req.Path, req.Text)
	default:
		res, err = s.storage.SaveTemplate(req.Name, req.Text)
	}

	metrics.ObserveExport("file", err)
	if err != nil {
		s.log.Warn("export failed", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	s.log.Info("exported template", zap.String("path", res.Path), zap.Int("bytes", res.Bytes))
	return res, nil
}

// SuggestedFilename returns the download name for a character
func (s *Service) SuggestedFilename(name string) string {
	return storage.Filename(name)
}

// ReadTemplate reads a template file relative to the export directory
func (s *Service) ReadTemplate(path string) (string, error) {
	return s.storage.ReadText(path)
}

// Copy places text on the clipboard and returns a status line
func (s *Service) Copy(text string) (string, error) {
	status, err := clipboard.CopyWithStatus(s.clipboard, text)
	metrics.ObserveExport("clipboard", err)
	if err != nil {
		s.log.Warn("clipboard copy failed", zap.Error(err))
	}
	return status, err
}

// NewSession returns an editing session counting with the configured strategy
func (s *Service) NewSession() *session.Session {
	return session.NewWithRenderer(func(req models.GenerationRequest) (string, error) {
		doc, err := s.Render(req)
		return doc.Text, err
	}, s.counter)
}

// Health reports service status
func (s *Service) Health() HealthStatus {
	formats := make([]string, 0, len(models.Formats()))
	for _, f := range models.Formats() {
		formats = append(formats, string(f))
	}

	available := true
	if sys, ok := s.clipboard.(*clipboard.System); ok {
		available = sys.Available()
	}

	return HealthStatus{
		Status:        "healthy",
		Version:       s.version,
		Uptime:        time.Since(s.startedAt).Round(time.Second).String(),
		TokenStrategy: string(s.counter.Strategy()),
		Formats:       formats,
		ExportDir:     s.storage.GetBaseDir(),
		Clipboard:     available,
	}
}

// Version returns the build version
func (s *Service) Version() string {
	return s.version
}

// Logger returns the service logger
func (s *Service) Logger() *zap.Logger {
	return s.log
}
