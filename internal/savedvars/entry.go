package savedvars

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ManagedSuffix marks entry labels owned by archonup. Entries without it
// are never touched, whatever their shape.
const ManagedSuffix = " [Archon]"

// ManagedEntry is one build entry owned by archonup. Identity is
// (Character, Spec, Content); at most one managed entry per identity
// exists in a document.
type ManagedEntry struct {
	Character string // user-facing character label
	Class     string // canonical class token
	Spec      string // canonical spec token
	Content   string // content identity, e.g. "raid:broodtwister:heroic" or "dungeon:ara-kara"
	Code      string // talent build code
}

// Key returns the uniqueness key for upsert/replace.
func (e ManagedEntry) Key() string {
	return e.Character + "|" + e.Spec + "|" + e.Content
}

var titleCaser = cases.Title(language.English)

// Label builds the entry's display label, ending in ManagedSuffix.
func (e ManagedEntry) Label() string {
	return fmt.Sprintf("%s - %s - %s%s", e.Character, titleize(e.Spec), contentLabel(e.Content), ManagedSuffix)
}

// contentLabel renders a content identity for display:
// "raid:broodtwister:heroic" -> "Broodtwister (Heroic)",
// "dungeon:ara-kara" -> "Ara Kara".
func contentLabel(content string) string {
	parts := strings.SplitN(content, ":", 3)
	switch {
	case len(parts) == 3 && parts[0] == "raid":
		return fmt.Sprintf("%s (%s)", titleize(parts[1]), titleize(parts[2]))
	case len(parts) >= 2:
		return titleize(parts[1])
	default:
		return titleize(content)
	}
}

func titleize(token string) string {
	return titleCaser.String(strings.ReplaceAll(token, "-", " "))
}

// render serializes the entry in the document's native format. The layout
// matches what WoW itself writes (tab indent, bracketed string keys,
// trailing commas) so a reload-and-save by the game is a no-op.
func (e ManagedEntry) render(sb *strings.Builder) {
	sb.WriteString("\n\t[")
	sb.WriteString(luaQuote(e.Label()))
	sb.WriteString("] = {")
	for _, f := range [...][2]string{
		{"character", e.Character},
		{"class", e.Class},
		{"code", e.Code},
		{"content", e.Content},
		{"spec", e.Spec},
	} {
		sb.WriteString("\n\t\t[")
		sb.WriteString(luaQuote(f[0]))
		sb.WriteString("] = ")
		sb.WriteString(luaQuote(f[1]))
		sb.WriteString(",")
	}
	sb.WriteString("\n\t},")
}

// luaQuote renders s as a double-quoted Lua string literal.
func luaQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// luaUnquote undoes luaQuote's escapes. The input is the literal's body,
// without the surrounding quotes.
func luaUnquote(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
