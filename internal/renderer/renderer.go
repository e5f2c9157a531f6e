package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/skeleton"
)

const indentUnit = "    "

// Render produces the character template for one format. With populate set every
// field carries its fixed example value, otherwise every field is "". The name is
// interpolated as-is; embedded quotes are not escaped.
func Render(name string, format models.Format, populate bool) (string, error) {
	nodes, err := skeleton.For(format)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "character(\"%s\") {\n", name)
	writeNodes(&b, nodes, 1, populate)
	b.WriteString("}")
	return b.String(), nil
}

// writeNodes emits siblings at one depth. A blank line separates two siblings
// whenever either of them is a block.
func writeNodes(b *strings.Builder, nodes []skeleton.Node, depth int, populate bool) {
	pad := strings.Repeat(indentUnit, depth)
	for i, n := range nodes {
		if i > 0 && (n.IsBlock() || nodes[i-1].IsBlock()) {
			b.WriteString("\n")
		}

		if n.IsBlock() {
			b.WriteString(pad + n.Name + " {\n")
			writeNodes(b, n.Children, depth+1, populate)
			b.WriteString(pad + "}\n")
			continue
		}

		value := ""
		if populate {
			value = n.Example
		}
		fmt.Fprintf(b, "%s%s(\"%s\")\n", pad, n.Name, value)
	}
}

// Renderer renders generation requests into template documents
type Renderer struct{}

// NewRenderer creates a new renderer instance
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderText renders the request as plain template text
func (r *Renderer) RenderText(req models.GenerationRequest) (string, error) {
	if !req.Format.Valid() {
		return "", errors.InvalidFormatError(string(req.Format))
	}
	return Render(req.Name, req.Format, req.Populate)
}

// RenderRequest renders the request and keeps the request alongside the text
func (r *Renderer) RenderRequest(req models.GenerationRequest) (models.TemplateDocument, error) {
	text, err := r.RenderText(req)
	if err != nil {
		return models.TemplateDocument{}, err
	}
	return models.TemplateDocument{Request: req, Text: text}, nil
}

// RenderJSON renders the template as a JSON message array for LLM APIs
func (r *Renderer) RenderJSON(req models.GenerationRequest) (string, error) {
	text, err := r.RenderText(req)
	if err != nil {
		return "", err
	}
	return EncodeMessages(text)
}

// EncodeMessages wraps already rendered text as a one-message system prompt array
func EncodeMessages(text string) (string, error) {
	messages := []Message{
		{
			Role:    "system",
			Content: text,
		},
	}

	jsonBytes, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	return string(jsonBytes), nil
}

// Message represents a chat message for LLM APIs
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
