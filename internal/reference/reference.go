// Package reference holds the static writing aids shown next to the generator:
// personality trait vocabularies, appearance description prompts and guide links.
package reference

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// TraitCategory groups trait words by connotation
type TraitCategory string

const (
	Positive TraitCategory = "positive"
	Neutral  TraitCategory = "neutral"
	Negative TraitCategory = "negative"
)

// TraitList is one category of trait words in display order
type TraitList struct {
	Category TraitCategory `json:"category" yaml:"category"`
	Title    string        `json:"title" yaml:"title"`
	Words    []string      `json:"words" yaml:"words"`
}

// AppearanceSection is one body area with the aspects worth describing
type AppearanceSection struct {
	Title   string `json:"title" yaml:"title"`
	Prompts string `json:"prompts" yaml:"prompts"`
}

// Guide is an external writing guide
type Guide struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// TraitMatch is a single fuzzy search hit
type TraitMatch struct {
	Word     string        `json:"word"`
	Category TraitCategory `json:"category"`
	Score    int           `json:"score"`
}

var traits = []TraitList{
	{
		Category: Positive,
		Title:    "Positive Traits",
		Words: split("Affectionate, Ambitious, Brave, Calm, Caring, Charismatic, Cheerful, Compassionate, " +
			"Confident, Considerate, Cooperative, Courteous, Creative, Decisive, Determined, Diligent, " +
			"Empathetic, Enthusiastic, Faithful, Flexible, Forgiving, Friendly, Generous, Gentle, Helpful, " +
			"Honest, Hopeful, Humble, Imaginative, Independent, Innovative, Kind, Logical, Loyal, Loving, " +
			"Mature, Modest, Motivated, Optimistic, Organized, Outgoing, Patient, Polite, Positive, Practical, " +
			"Proactive, Rational, Reliable, Respectful, Responsible, Sincere, Sociable, Supportive, Thoughtful, " +
			"Tolerant, Trustworthy, Understanding, Warm"),
	},
	{
		Category: Neutral,
		Title:    "Neutral Traits",
		Words: split("Analytical, Assertive, Cautious, Competitive, Curious, Direct, Discreet, Dreamy, " +
			"Emotional, Focused, Formal, Honest (blunt), Idealistic, Introspective, Methodical, Observant, " +
			"Outspoken, Perfectionist, Quiet, Realistic, Reflective, Reserved, Sarcastic, Serious, Shy, " +
			"Skeptical, Strategic, Studious, Tenacious, Thoughtful (pragmatic), Tidy, Tough, Unconventional, Witty"),
	},
	{
		Category: Negative,
		Title:    "Negative Traits",
		Words: split("Aggressive, Aloof, Anxious, Arrogant, Bossy, Clingy, Cold, Conceited, Cowardly, " +
			"Critical, Cruel, Cynical, Deceitful, Defensive, Demanding, Dishonest, Disloyal, Disrespectful, " +
			"Distrustful, Envious, Fearful, Foolish, Forgetful, Greedy, Grumpy, Gullible, Hostile, Impatient, " +
			"Impulsive, Inconsiderate, Inflexible, Intolerant, Irresponsible, Jealous, Lazy, Manipulative, " +
			"Moody, Naive, Neglectful, Obsessive, Overbearing, Paranoid, Passive, Pessimistic, Possessive, " +
			"Reckless, Rude, Selfish, Stubborn, Suspicious, Tactless, Unfriendly, Ungrateful, Unreliable, " +
			"Vain, Vindictive, Weak-willed"),
	},
}

var appearance = []AppearanceSection{
	{
		Title: "Head & Face",
		Prompts: "Facial shape, jawline structure, cheekbone prominence, nose length and tip, chin shape, " +
			"ears, eye spacing, eyebrow style, mouth and lip fullness, etc.",
	},
	{
		Title:   "Hair",
		Prompts: "Length, color, texture, parting, styling (braids, buns, waves), volume, accessories (clips, ties).",
	},
	{
		Title: "Body",
		Prompts: "Height description (tall, petite), build (slender, stocky), limb proportions, shoulder width, " +
			"muscle tone, posture.",
	},
	{
		Title: "Skin",
		Prompts: "Tone (fair, olive, dark), undertones (cool, warm), complexion (freckled, smooth), scars, " +
			"tattoos, markings.",
	},
}

var guides = []Guide{
	{"Character Creation Guide", "https://docs.google.com/document/d/1bEtS5YNWuZ4--ji8sfL5Cf8UCBsYeXxYpiKuaX6kLoo/edit?usp=sharing"},
	{"F++ Format Extended Guide", "https://docs.google.com/document/d/1pa_6OyVh1r72Hhz1EqITrf3gzBzu6eC_HixSxeni3oY/edit?usp=sharing"},
	{"Writing Styles Guide", "https://docs.google.com/document/d/13T_HTVxtAYBqhBwcQBQv3NCSLEGKuhifer-QrHkVcpw/edit?usp=sharing"},
}

func split(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Traits returns all trait lists in positive, neutral, negative order.
// The returned slice is a copy; callers may modify it.
func Traits() []TraitList {
	out := make([]TraitList, len(traits))
	for i, t := range traits {
		out[i] = TraitList{Category: t.Category, Title: t.Title, Words: append([]string(nil), t.Words...)}
	}
	return out
}

// TraitsFor returns the list for one category
func TraitsFor(category TraitCategory) (TraitList, bool) {
	for _, t := range Traits() {
		if t.Category == category {
			return t, true
		}
	}
	return TraitList{}, false
}

// Appearance returns the appearance description sections
func Appearance() []AppearanceSection {
	return append([]AppearanceSection(nil), appearance...)
}

// Guides returns the writing guide links
func Guides() []Guide {
	return append([]Guide(nil), guides...)
}

// SearchTraits fuzzy-matches query against every trait word. Results are ordered by
// score, best first; ties keep catalogue order. An empty query returns every trait.
func SearchTraits(query string) []TraitMatch {
	var words []string
	var categories []TraitCategory
	for _, t := range traits {
		for _, w := range t.Words {
			words = append(words, w)
			categories = append(categories, t.Category)
		}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]TraitMatch, len(words))
		for i, w := range words {
			results[i] = TraitMatch{Word: w, Category: categories[i]}
		}
		return results
	}

	matches := fuzzy.Find(query, words)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	results := make([]TraitMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, TraitMatch{
			Word:     words[m.Index],
			Category: categories[m.Index],
			Score:    m.Score,
		})
	}
	return results
}
