// Package tokens approximates how many lexical units a text contains. The count is
// informational; it does not match any model vocabulary.
package tokens

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dpshade/character-template/internal/errors"
)

// Strategy names a counting rule. Counts from different strategies are not comparable.
type Strategy string

const (
	// StrategyRegex counts runs of word characters plus each other non-space character.
	StrategyRegex Strategy = "regex"
	// StrategyWhitespace counts runs of non-whitespace characters.
	StrategyWhitespace Strategy = "whitespace"
)

// DefaultStrategy is used when configuration does not name one
const DefaultStrategy = StrategyRegex

// Strategies lists the supported strategies
func Strategies() []Strategy {
	return []Strategy{StrategyRegex, StrategyWhitespace}
}

func strategyNames() string {
	names := make([]string, 0, len(Strategies()))
	for _, s := range Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// Counter counts tokens under one fixed strategy
type Counter interface {
	Count(text string) int
	Strategy() Strategy
}

// New returns the counter for the named strategy. An empty name selects DefaultStrategy.
func New(name string) (Counter, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case "", StrategyRegex:
		return RegexCounter{}, nil
	case StrategyWhitespace:
		return WhitespaceCounter{}, nil
	default:
		return nil, errors.NewAppError(errors.ErrCodeInvalidInput, "Unknown token counting strategy").
			WithDetails("expected one of "+strategyNames()).
			WithContext("strategy", name)
	}
}

// Word characters are Unicode letters, digits and underscore. Whitespace covers the
// ASCII set, the information separators and every Unicode separator.
const (
	wordClass  = `\p{L}\p{N}_`
	spaceClass = `\s\x0b\x1c-\x1f\x85\p{Z}`
)

var tokenPattern = regexp.MustCompile(`[` + wordClass + `]+|[^` + wordClass + spaceClass + `]`)

// RegexCounter implements StrategyRegex
type RegexCounter struct{}

// Count returns the number of word runs and standalone symbols in text.
// "a, b." counts as 4.
func (RegexCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(tokenPattern.FindAllStringIndex(text, -1))
}

// Strategy returns StrategyRegex
func (RegexCounter) Strategy() Strategy { return StrategyRegex }

// WhitespaceCounter implements StrategyWhitespace
type WhitespaceCounter struct{}

// Count returns the number of whitespace-separated chunks. "a, b." counts as 2.
func (WhitespaceCounter) Count(text string) int {
	return len(strings.FieldsFunc(text, isSpace))
}

// isSpace matches the same runes as spaceClass: Unicode white space plus the
// information separators U+001C to U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Strategy returns StrategyWhitespace
func (WhitespaceCounter) Strategy() Strategy { return StrategyWhitespace }

// Count counts text with the default strategy
func Count(text string) int {
	return RegexCounter{}.Count(text)
}
