package wow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "warrior", "warrior"},
		{"mixed case", "Warrior", "warrior"},
		{"spaced", "Death Knight", "death-knight"},
		{"unhyphenated alias", "deathknight", "death-knight"},
		{"demon hunter", "Demon Hunter", "demon-hunter"},
		{"evoker", "evoker", "evoker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassToken(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassToken_Unknown(t *testing.T) {
	_, err := ClassToken("warriro")
	require.Error(t, err)

	var ucErr *UnknownClassError
	require.True(t, errors.As(err, &ucErr))
	assert.Equal(t, "warriro", ucErr.Class)
	assert.Equal(t, "warrior", ucErr.Suggestion)
}

func TestClassToken_UnknownNoSuggestion(t *testing.T) {
	_, err := ClassToken("xyzzy")
	require.Error(t, err)

	var ucErr *UnknownClassError
	require.True(t, errors.As(err, &ucErr))
	assert.Empty(t, ucErr.Suggestion)
}

func TestSpecToken(t *testing.T) {
	tests := []struct {
		class string
		spec  string
		want  string
	}{
		{"warrior", "arms", "arms"},
		{"warrior", "Fury", "fury"},
		{"hunter", "Beast Mastery", "beast-mastery"},
		{"hunter", "beastmastery", "beast-mastery"},
		{"mage", "frost", "frost"},
		{"death-knight", "frost", "frost"},
		{"druid", "restoration", "restoration"},
	}

	for _, tt := range tests {
		got, err := SpecToken(tt.class, tt.spec)
		require.NoError(t, err, "%s/%s", tt.class, tt.spec)
		assert.Equal(t, tt.want, got)
	}
}

func TestSpecToken_WrongClass(t *testing.T) {
	// "arcane" is a mage spec, not a warrior one.
	_, err := SpecToken("warrior", "arcane")
	require.Error(t, err)

	var usErr *UnknownSpecError
	require.True(t, errors.As(err, &usErr))
	assert.Equal(t, "warrior", usErr.Class)
	assert.Equal(t, "arcane", usErr.Spec)
}

func TestSpecToken_Suggestion(t *testing.T) {
	_, err := SpecToken("warrior", "furry")
	require.Error(t, err)

	var usErr *UnknownSpecError
	require.True(t, errors.As(err, &usErr))
	assert.Equal(t, "fury", usErr.Suggestion)
}

func TestClasses(t *testing.T) {
	classes := Classes()
	assert.Len(t, classes, 13)
	assert.Contains(t, classes, "warrior")
	assert.Contains(t, classes, "death-knight")
	assert.Contains(t, classes, "evoker")
}

func TestSpecs(t *testing.T) {
	assert.ElementsMatch(t, []string{"arms", "fury", "protection"}, Specs("warrior"))
	assert.Empty(t, Specs("not-a-class"))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"broodtwister", "broodtwister"},
		{"Broodtwister Ovi'nax", "broodtwister-ovinax"},
		{"Ara-Kara, City of Echoes", "ara-kara-city-of-echoes"},
		{"The Dawnbreaker", "the-dawnbreaker"},
		{"Queen Ansurek", "queen-ansurek"},
		{"Léon", "leon"},
		{"  padded   name  ", "padded-name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.input), "input %q", tt.input)
	}
}
