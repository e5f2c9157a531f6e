// Package commands/template_commands implements the template generation commands.
//
// COMMAND IMPLEMENTATIONS:
// - RenderCommand: renders a GenerationRequest and counts the result
// - CountTokensCommand: counts arbitrary text with the configured or a named strategy
// - ListFormatsCommand: lists the three template formats
// - SkeletonCommand: returns the field tree of one format
// - ExportCommand: writes template text to the export directory
package commands

import (
	"context"
	"fmt"

	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/service"
	"github.com/dpshade/character-template/internal/skeleton"
)

// RenderResult is the data of a successful render
type RenderResult struct {
	Document models.TemplateDocument `json:"document"`
	Tokens   models.TokenCount       `json:"tokens"`
	Filename string                  `json:"filename"`
	// JSON holds the chat message array when output=json was requested
	JSON string `json:"json,omitempty"`
}

// RenderCommand renders a character template
type RenderCommand struct {
	service *service.Service
	Request models.GenerationRequest
	Output  string
}

func (c *RenderCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *RenderCommand) SetParameters(params map[string]interface{}) error {
	req, err := models.NewGenerationRequest(
		stringParam(params, "name"),
		stringParam(params, "format"),
		boolParam(params, "example"),
		stringParam(params, "character_type"),
	)
	if err != nil {
		return err
	}
	c.Request = req
	c.Output = stringParam(params, "output")
	if c.Output == "" {
		c.Output = "text"
	}
	return nil
}

func (c *RenderCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *RenderCommand) GetName() string {
	return "render"
}

func (c *RenderCommand) GetDescription() string {
	return "Render a character template for a format, optionally filled with the example character"
}

func (c *RenderCommand) Execute(ctx context.Context) (*CommandResult, error) {
	doc, err := c.service.Render(c.Request)
	if err != nil {
		return nil, err
	}

	result := RenderResult{
		Document: doc,
		Tokens:   c.service.CountTokens(doc.Text),
		Filename: c.service.SuggestedFilename(doc.Request.Name),
	}
	if c.Output == "json" {
		result.JSON, err = c.service.MessagesJSON(doc.Text)
		if err != nil {
			return nil, err
		}
	}

	return &CommandResult{
		Success: true,
		Data:    result,
		Message: fmt.Sprintf("Rendered %s template (%s), %d tokens", doc.Request.Format.Name(), doc.Request.Mode(), result.Tokens.Count),
	}, nil
}

// CountTokensCommand counts tokens in text
type CountTokensCommand struct {
	service  *service.Service
	Text     string
	Strategy string
}

func (c *CountTokensCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *CountTokensCommand) SetParameters(params map[string]interface{}) error {
	c.Text = stringParam(params, "text")
	c.Strategy = stringParam(params, "strategy")
	return nil
}

func (c *CountTokensCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *CountTokensCommand) GetName() string {
	return "count"
}

func (c *CountTokensCommand) GetDescription() string {
	return "Count approximate tokens in text"
}

func (c *CountTokensCommand) Execute(ctx context.Context) (*CommandResult, error) {
	tc, err := c.service.CountTokensWith(c.Text, c.Strategy)
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Success: true,
		Data:    tc,
		Message: fmt.Sprintf("Token Count: %d (%s)", tc.Count, tc.Strategy),
	}, nil
}

// ListFormatsCommand lists the template formats
type ListFormatsCommand struct {
	service *service.Service
}

func (c *ListFormatsCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ListFormatsCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ListFormatsCommand) GetName() string {
	return "formats"
}

func (c *ListFormatsCommand) GetDescription() string {
	return "List the available template formats"
}

func (c *ListFormatsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	formats := c.service.Formats()
	return &CommandResult{
		Success: true,
		Data:    formats,
		Message: fmt.Sprintf("Found %d formats", len(formats)),
	}, nil
}

// SkeletonResult is the field tree of one format
type SkeletonResult struct {
	Format models.FormatInfo `json:"format" yaml:"format"`
	Nodes  []skeleton.Node   `json:"nodes" yaml:"nodes"`
	Paths  []string          `json:"paths" yaml:"paths"`
}

// SkeletonCommand returns the field tree of a format
type SkeletonCommand struct {
	service *service.Service
	Format  models.Format
}

func (c *SkeletonCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *SkeletonCommand) SetParameters(params map[string]interface{}) error {
	f, err := models.ParseFormat(stringParam(params, "format"))
	if err != nil {
		return err
	}
	c.Format = f
	return nil
}

func (c *SkeletonCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *SkeletonCommand) GetName() string {
	return "skeleton"
}

func (c *SkeletonCommand) GetDescription() string {
	return "Show the field tree of a template format"
}

func (c *SkeletonCommand) Execute(ctx context.Context) (*CommandResult, error) {
	nodes, err := c.service.Skeleton(c.Format)
	if err != nil {
		return nil, err
	}
	paths, err := c.service.FieldPaths(c.Format)
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Success: true,
		Data: SkeletonResult{
			Format: c.Format.Info(),
			Nodes:  nodes,
			Paths:  paths,
		},
		Message: fmt.Sprintf("%s has %d fields", c.Format, len(paths)),
	}, nil
}

// ExportCommand writes template text to a file
type ExportCommand struct {
	service  *service.Service
	Name     string
	Text     string
	Path     string
	WithMeta bool
	// Request is set when the caller identified the format that produced Text
	Request *models.GenerationRequest
}

func (c *ExportCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ExportCommand) SetParameters(params map[string]interface{}) error {
	c.Name = stringParam(params, "name")
	c.Text = stringParam(params, "text")
	c.Path = stringParam(params, "path")
	c.WithMeta = boolParam(params, "with_meta")
	if format := stringParam(params, "format"); format != "" {
		req, err := models.NewGenerationRequest(c.Name, format, boolParam(params, "example"), stringParam(params, "character_type"))
		if err != nil {
			return err
		}
		c.Request = &req
	}
	return nil
}

func (c *ExportCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ExportCommand) GetName() string {
	return "export"
}

func (c *ExportCommand) GetDescription() string {
	return "Save template text as a .txt file"
}

func (c *ExportCommand) Execute(ctx context.Context) (*CommandResult, error) {
	res, err := c.service.Export(service.ExportRequest{
		Name:     c.Name,
		Text:     c.Text,
		Path:     c.Path,
		Request:  c.Request,
		WithMeta: c.WithMeta,
	})
	if err != nil {
		return nil, err
	}
	return &CommandResult{
		Success: true,
		Data:    res,
		Message: fmt.Sprintf("Saved %s", res.Path),
	}, nil
}
