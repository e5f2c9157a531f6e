package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraitCatalogue(t *testing.T) {
	lists := Traits()
	require.Len(t, lists, 3)
	assert.Equal(t, Positive, lists[0].Category)
	assert.Equal(t, Neutral, lists[1].Category)
	assert.Equal(t, Negative, lists[2].Category)

	assert.Len(t, lists[0].Words, 58)
	assert.Len(t, lists[1].Words, 34)
	assert.Len(t, lists[2].Words, 57)

	assert.Equal(t, "Affectionate", lists[0].Words[0])
	assert.Equal(t, "Warm", lists[0].Words[len(lists[0].Words)-1])
	assert.Contains(t, lists[1].Words, "Honest (blunt)")
	assert.Contains(t, lists[2].Words, "Weak-willed")

	for _, l := range lists {
		for _, w := range l.Words {
			assert.Equal(t, strings.TrimSpace(w), w)
			assert.NotEmpty(t, w)
		}
	}
}

func TestTraitsReturnsCopy(t *testing.T) {
	lists := Traits()
	lists[0].Words[0] = "Changed"

	again := Traits()
	assert.Equal(t, "Affectionate", again[0].Words[0])
}

func TestTraitsFor(t *testing.T) {
	l, ok := TraitsFor(Negative)
	require.True(t, ok)
	assert.Equal(t, "Negative Traits", l.Title)

	_, ok = TraitsFor("mixed")
	assert.False(t, ok)
}

func TestAppearanceAndGuides(t *testing.T) {
	sections := Appearance()
	require.Len(t, sections, 4)
	assert.Equal(t, []string{"Head & Face", "Hair", "Body", "Skin"},
		[]string{sections[0].Title, sections[1].Title, sections[2].Title, sections[3].Title})

	gs := Guides()
	require.Len(t, gs, 3)
	for _, g := range gs {
		assert.True(t, strings.HasPrefix(g.URL, "https://docs.google.com/"), g.URL)
	}
}

func TestSearchTraits(t *testing.T) {
	results := SearchTraits("loyal")
	require.NotEmpty(t, results)
	assert.Equal(t, "Loyal", results[0].Word)
	assert.Equal(t, Positive, results[0].Category)

	var words []string
	for _, r := range results {
		words = append(words, r.Word)
	}
	assert.Contains(t, words, "Disloyal")

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchTraitsEmptyQuery(t *testing.T) {
	results := SearchTraits("  ")
	assert.Len(t, results, 58+34+57)
	assert.Equal(t, "Affectionate", results[0].Word)
}

func TestSearchTraitsNoMatch(t *testing.T) {
	assert.Empty(t, SearchTraits("zzzzqqq"))
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(SectionTraits)
	require.NoError(t, err)
	assert.Contains(t, md, "## 💙 Positive Traits")
	assert.Contains(t, md, "Tolerant, Trustworthy, Understanding, Warm")

	md, err = Markdown(SectionUsage)
	require.NoError(t, err)
	assert.Contains(t, md, "`F++` → Appearance & style")
	assert.Contains(t, md, "`S++` → Role/Scenario details")

	all, err := Markdown(SectionAll)
	require.NoError(t, err)
	assert.Contains(t, all, "# Appearance Description Reference")
	assert.Contains(t, all, "# Helpful Writing Guides")

	_, err = Markdown("colors")
	assert.Error(t, err)
}

func TestRenderWithExplicitStyle(t *testing.T) {
	out, err := Render(SectionGuides, "notty", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Character Creation Guide")
}
