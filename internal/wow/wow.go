// Package wow maps class, specialization, and content names to the
// canonical lowercase-hyphenated tokens used in Archon.gg and wowhead URLs.
// All lookups are pure; anything unknown is a configuration error, caught
// before any network activity.
package wow

import (
	"fmt"
	"sort"

	"github.com/hbollon/go-edlib"
)

// classSpecs holds every playable class token and its valid specialization
// tokens. Tokens match the path segments Archon.gg uses.
var classSpecs = map[string][]string{
	"death-knight": {"blood", "frost", "unholy"},
	"demon-hunter": {"havoc", "vengeance"},
	"druid":        {"balance", "feral", "guardian", "restoration"},
	"evoker":       {"augmentation", "devastation", "preservation"},
	"hunter":       {"beast-mastery", "marksmanship", "survival"},
	"mage":         {"arcane", "fire", "frost"},
	"monk":         {"brewmaster", "mistweaver", "windwalker"},
	"paladin":      {"holy", "protection", "retribution"},
	"priest":       {"discipline", "holy", "shadow"},
	"rogue":        {"assassination", "outlaw", "subtlety"},
	"shaman":       {"elemental", "enhancement", "restoration"},
	"warlock":      {"affliction", "demonology", "destruction"},
	"warrior":      {"arms", "fury", "protection"},
}

// classAliases maps common unhyphenated spellings to canonical tokens.
var classAliases = map[string]string{
	"deathknight": "death-knight",
	"demonhunter": "demon-hunter",
}

// specAliases covers spec names users tend to write out in full.
var specAliases = map[string]string{
	"beastmastery": "beast-mastery",
	"beast":        "beast-mastery",
}

// UnknownClassError reports a class name not in the fixed class table.
type UnknownClassError struct {
	Class      string
	Suggestion string // closest valid token, empty if nothing is close
}

func (e *UnknownClassError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown class %q (did you mean %q?)", e.Class, e.Suggestion)
	}
	return fmt.Sprintf("unknown class %q", e.Class)
}

// UnknownSpecError reports a specialization that is not valid for the class.
type UnknownSpecError struct {
	Class      string
	Spec       string
	Suggestion string
}

func (e *UnknownSpecError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown specialization %q for class %q (did you mean %q?)", e.Spec, e.Class, e.Suggestion)
	}
	return fmt.Sprintf("unknown specialization %q for class %q", e.Spec, e.Class)
}

// ClassToken resolves a user-supplied class name to its canonical token.
func ClassToken(class string) (string, error) {
	token := Slug(class)
	if alias, ok := classAliases[token]; ok {
		token = alias
	}
	if _, ok := classSpecs[token]; !ok {
		return "", &UnknownClassError{Class: class, Suggestion: suggest(token, Classes())}
	}
	return token, nil
}

// SpecToken resolves a specialization name within the given class.
// The class must already be a canonical token (from ClassToken).
func SpecToken(class, spec string) (string, error) {
	specs, ok := classSpecs[class]
	if !ok {
		return "", &UnknownClassError{Class: class, Suggestion: suggest(class, Classes())}
	}
	token := Slug(spec)
	if alias, ok := specAliases[token]; ok {
		token = alias
	}
	for _, s := range specs {
		if s == token {
			return token, nil
		}
	}
	return "", &UnknownSpecError{Class: class, Spec: spec, Suggestion: suggest(token, specs)}
}

// BossToken returns the URL token for a raid boss name.
func BossToken(name string) string {
	return Slug(name)
}

// DungeonToken returns the URL token for a dungeon name.
func DungeonToken(name string) string {
	return Slug(name)
}

// Classes returns all canonical class tokens, sorted.
func Classes() []string {
	out := make([]string, 0, len(classSpecs))
	for c := range classSpecs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Specs returns the valid specialization tokens for a canonical class token.
// Returns nil for an unknown class.
func Specs(class string) []string {
	specs := classSpecs[class]
	out := make([]string, len(specs))
	copy(out, specs)
	return out
}

// suggestThreshold is the minimum Jaro-Winkler similarity for a
// "did you mean" suggestion. Below this the input is too far off
// to guess at.
const suggestThreshold = 0.75

// suggest returns the candidate most similar to input, or "" when no
// candidate clears the similarity threshold.
func suggest(input string, candidates []string) string {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := float64(edlib.JaroWinklerSimilarity(input, c))
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}
