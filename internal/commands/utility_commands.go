// Package commands/utility_commands implements reference and system commands.
//
// COMMAND IMPLEMENTATIONS:
// - ListTraitsCommand: trait vocabularies, optionally one category
// - SearchTraitsCommand: fuzzy search over trait words
// - AppearanceCommand: appearance description prompts
// - ReferenceCommand: a reference section as markdown
// - HealthCheckCommand: service status for monitoring
package commands

import (
	"context"
	"fmt"

	"github.com/dpshade/character-template/internal/reference"
	"github.com/dpshade/character-template/internal/service"
)

// ListTraitsCommand lists trait vocabularies
type ListTraitsCommand struct {
	service  *service.Service
	Category string
}

func (c *ListTraitsCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ListTraitsCommand) SetParameters(params map[string]interface{}) error {
	c.Category = stringParam(params, "category")
	return nil
}

func (c *ListTraitsCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ListTraitsCommand) GetName() string {
	return "traits"
}

func (c *ListTraitsCommand) GetDescription() string {
	return "List personality trait vocabularies"
}

func (c *ListTraitsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	lists, err := c.service.Traits(c.Category)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, l := range lists {
		total += len(l.Words)
	}
	return &CommandResult{
		Success: true,
		Data:    lists,
		Message: fmt.Sprintf("Found %d traits", total),
	}, nil
}

// SearchTraitsResult is the data of a trait search
type SearchTraitsResult struct {
	Query   string                 `json:"query"`
	Matches []reference.TraitMatch `json:"matches"`
}

// SearchTraitsCommand fuzzy-searches trait words
type SearchTraitsCommand struct {
	service  *service.Service
	Query    string
	Category string
	Limit    int
}

func (c *SearchTraitsCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *SearchTraitsCommand) SetParameters(params map[string]interface{}) error {
	c.Query = stringParam(params, "query")
	c.Category = stringParam(params, "category")
	c.Limit = intParam(params, "limit")
	return nil
}

func (c *SearchTraitsCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *SearchTraitsCommand) GetName() string {
	return "search-traits"
}

func (c *SearchTraitsCommand) GetDescription() string {
	return "Fuzzy search personality trait words"
}

func (c *SearchTraitsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	matches := c.service.SearchTraits(c.Query, c.Category, c.Limit)
	return &CommandResult{
		Success: true,
		Data:    SearchTraitsResult{Query: c.Query, Matches: matches},
		Message: fmt.Sprintf("Found %d traits matching '%s'", len(matches), c.Query),
	}, nil
}

// AppearanceCommand lists appearance description prompts
type AppearanceCommand struct {
	service *service.Service
}

func (c *AppearanceCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *AppearanceCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *AppearanceCommand) GetName() string {
	return "appearance"
}

func (c *AppearanceCommand) GetDescription() string {
	return "List appearance description prompts by body area"
}

func (c *AppearanceCommand) Execute(ctx context.Context) (*CommandResult, error) {
	sections := c.service.Appearance()
	return &CommandResult{
		Success: true,
		Data:    sections,
		Message: fmt.Sprintf("Found %d appearance sections", len(sections)),
	}, nil
}

// ReferenceResult is a rendered reference section
type ReferenceResult struct {
	Section  string            `json:"section"`
	Markdown string            `json:"markdown"`
	Guides   []reference.Guide `json:"guides,omitempty"`
}

// ReferenceCommand returns reference material as markdown
type ReferenceCommand struct {
	service *service.Service
	Section string
}

func (c *ReferenceCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ReferenceCommand) SetParameters(params map[string]interface{}) error {
	c.Section = stringParam(params, "section")
	return nil
}

func (c *ReferenceCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ReferenceCommand) GetName() string {
	return "reference"
}

func (c *ReferenceCommand) GetDescription() string {
	return "Show writing reference material (usage, traits, appearance, guides)"
}

func (c *ReferenceCommand) Execute(ctx context.Context) (*CommandResult, error) {
	md, err := c.service.ReferenceMarkdown(c.Section)
	if err != nil {
		return nil, err
	}

	result := ReferenceResult{Section: c.Section, Markdown: md}
	if c.Section == "" {
		result.Section = "all"
	}
	if c.Section == "" || c.Section == string(reference.SectionGuides) {
		result.Guides = c.service.Guides()
	}

	return &CommandResult{
		Success: true,
		Data:    result,
	}, nil
}

// HealthCheckCommand provides system health information
type HealthCheckCommand struct {
	service *service.Service
}

func (c *HealthCheckCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *HealthCheckCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *HealthCheckCommand) GetName() string {
	return "health"
}

func (c *HealthCheckCommand) GetDescription() string {
	return "Check system health and service status"
}

func (c *HealthCheckCommand) Execute(ctx context.Context) (*CommandResult, error) {
	return &CommandResult{
		Success: true,
		Data:    c.service.Health(),
		Message: "Service is healthy",
	}, nil
}
