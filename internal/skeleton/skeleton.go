// Package skeleton holds the fixed field trees that each template format renders from.
package skeleton

import (
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
)

// Node is either a leaf field with an example value or a named block of child nodes
type Node struct {
	Name     string `json:"name" yaml:"name"`
	Example  string `json:"example,omitempty" yaml:"example,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsBlock reports whether the node is a section rather than a field
func (n Node) IsBlock() bool {
	return len(n.Children) > 0
}

func field(name, example string) Node {
	return Node{Name: name, Example: example}
}

func block(name string, children ...Node) Node {
	return Node{Name: name, Children: children}
}

func identity(height string) []Node {
	return []Node{
		field("Gender", "Female"),
		field("Race", "Human"),
		field("Age", "18"),
		field("Height", height),
		field("Nickname", "Example"),
	}
}

var appearance = append(identity("Petite and toned, with nimble proportions"),
	block("Appearance",
		block("Hairstyle",
			field("Type", "Short bob cut, slightly angled toward the jawline."),
			field("Texture", "Smooth and slightly layered for a natural, effortless look."),
			field("Details", "Light bangs frame the forehead, adding a youthful charm."),
		),
		field("HairColor", "Jet black with a healthy sheen."),
		block("EyeColor",
			field("Hue", "Vibrant green with a soft and gentle undertone."),
			field("Shape", "Almond-shaped, wide, and expressive."),
			field("Expression", "Often thoughtful or slightly serious."),
		),
		block("BodyProportions",
			field("Build", "Slim and athletic"),
			field("Posture", "Upright and composed"),
			field("Features", "Agile physique suited to an active lifestyle."),
		),
		block("Attire",
			field("Top", "White hoodie with a pink stripe"),
			field("Bottom", "Light gray pleated skirt"),
			field("Legwear", "Fitted pink tights"),
			field("Footwear", "Sporty sneakers"),
			field("Accessories", "Minimalistic, functional."),
		),
		field("OverallAura", "Practical and laid-back appearance reflecting a tough-yet-caring spirit."),
	),
)

var personality = append(identity("Petite and athletic"),
	block("Personality",
		field("CoreTraits", "Courageous, Loyal, Resilient, Determined, Adaptable"),
		field("PositiveTraits", "Friendly, Humble, Caring, Open-Minded, Observant"),
		field("NeutralTraits", "Practical, Independent, Street-Smart, Resourceful, Curious"),
		field("NegativeTraits", "Blunt, Rebellious, Naïve, Risk-Taker, Initially Guarded"),
		field("Description", "An adaptable fighter who's evolved from impulsiveness into someone driven by loyalty and purpose. She remains grounded through sarcasm, curiosity, and an unshakable will to grow."),
	),
)

var scenario = []Node{
	field("Role", "Combat Companion"),
	field("Specialty", "Close-quarters battle"),
	field("CombatStyle", "Aggressive and reactive"),
	field("ScenarioTags", "Dungeon Raid, Rival Hunter, Tense Rescue"),
	field("SampleDialogue", "I'll hold them off — just go!"),
}

// For returns the top-level nodes of the format's skeleton. Callers must not modify
// the returned slice.
func For(format models.Format) ([]Node, error) {
	switch format {
	case models.FormatAppearance:
		return appearance, nil
	case models.FormatPersonality:
		return personality, nil
	case models.FormatScenario:
		return scenario, nil
	default:
		return nil, errors.InvalidFormatError(string(format))
	}
}

// FieldPaths lists the dotted path of every leaf field in render order,
// e.g. "Appearance.Hairstyle.Type".
func FieldPaths(format models.Format) ([]string, error) {
	nodes, err := For(format)
	if err != nil {
		return nil, err
	}
	var paths []string
	var walk func(prefix string, nodes []Node)
	walk = func(prefix string, nodes []Node) {
		for _, n := range nodes {
			path := n.Name
			if prefix != "" {
				path = prefix + "." + n.Name
			}
			if n.IsBlock() {
				walk(path, n.Children)
				continue
			}
			paths = append(paths, path)
		}
	}
	walk("", nodes)
	return paths, nil
}

// Example returns the example value of the leaf at path
func Example(format models.Format, path string) (string, bool) {
	nodes, err := For(format)
	if err != nil {
		return "", false
	}
	var find func(prefix string, nodes []Node) (string, bool)
	find = func(prefix string, nodes []Node) (string, bool) {
		for _, n := range nodes {
			p := n.Name
			if prefix != "" {
				p = prefix + "." + n.Name
			}
			if n.IsBlock() {
				if v, ok := find(p, n.Children); ok {
					return v, true
				}
				continue
			}
			if p == path {
				return n.Example, true
			}
		}
		return "", false
	}
	return find("", nodes)
}
