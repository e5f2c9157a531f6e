package skeleton

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
)

var identityPaths = []string{"Gender", "Race", "Age", "Height", "Nickname"}

func TestFieldPathsAppearance(t *testing.T) {
	paths, err := FieldPaths(models.FormatAppearance)
	require.NoError(t, err)

	want := append(append([]string{}, identityPaths...),
		"Appearance.Hairstyle.Type",
		"Appearance.Hairstyle.Texture",
		"Appearance.Hairstyle.Details",
		"Appearance.HairColor",
		"Appearance.EyeColor.Hue",
		"Appearance.EyeColor.Shape",
		"Appearance.EyeColor.Expression",
		"Appearance.BodyProportions.Build",
		"Appearance.BodyProportions.Posture",
		"Appearance.BodyProportions.Features",
		"Appearance.Attire.Top",
		"Appearance.Attire.Bottom",
		"Appearance.Attire.Legwear",
		"Appearance.Attire.Footwear",
		"Appearance.Attire.Accessories",
		"Appearance.OverallAura",
	)
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("appearance paths mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldPathsPersonality(t *testing.T) {
	paths, err := FieldPaths(models.FormatPersonality)
	require.NoError(t, err)

	want := append(append([]string{}, identityPaths...),
		"Personality.CoreTraits",
		"Personality.PositiveTraits",
		"Personality.NeutralTraits",
		"Personality.NegativeTraits",
		"Personality.Description",
	)
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("personality paths mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldPathsScenarioHasNoIdentity(t *testing.T) {
	paths, err := FieldPaths(models.FormatScenario)
	require.NoError(t, err)

	assert.Equal(t, []string{"Role", "Specialty", "CombatStyle", "ScenarioTags", "SampleDialogue"}, paths)
	for _, p := range identityPaths {
		assert.NotContains(t, paths, p)
	}
}

func TestExampleValues(t *testing.T) {
	v, ok := Example(models.FormatAppearance, "Appearance.HairColor")
	require.True(t, ok)
	assert.Equal(t, "Jet black with a healthy sheen.", v)

	appearanceHeight, _ := Example(models.FormatAppearance, "Height")
	personalityHeight, _ := Example(models.FormatPersonality, "Height")
	assert.Equal(t, "Petite and toned, with nimble proportions", appearanceHeight)
	assert.Equal(t, "Petite and athletic", personalityHeight)

	_, ok = Example(models.FormatScenario, "Gender")
	assert.False(t, ok)
}

func TestEveryLeafHasExample(t *testing.T) {
	for _, f := range models.Formats() {
		paths, err := FieldPaths(f)
		require.NoError(t, err)
		for _, p := range paths {
			v, ok := Example(f, p)
			assert.True(t, ok, "%s %s", f, p)
			assert.NotEmpty(t, v, "%s %s", f, p)
		}
	}
}

func TestForUnknownFormat(t *testing.T) {
	_, err := For(models.Format("X++"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}
