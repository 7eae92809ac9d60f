// Package savedvars reads and rewrites a WoW SavedVariables file holding
// a single top-level table of build entries. Entries created by archonup
// (label suffix ManagedSuffix) are parsed into structure; everything else
// is opaque and survives a load/modify/save cycle byte-for-byte. That
// preservation guarantee is what makes the store safe against real user
// data.
package savedvars

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// node is one top-level table element: either a structurally understood
// managed entry or an opaque raw span (leading trivia and terminator
// included) reproduced verbatim on serialize.
type node struct {
	raw     string
	managed *ManagedEntry
}

// Document is the in-memory model of a SavedVariables file.
//
// Placement policy: opaque entries keep their original relative order and
// never move. A replaced managed entry keeps its prior position; a new
// managed entry is appended after the last existing entry. Addons load
// entries in file order, so the policy is part of the contract and is
// covered by tests.
type Document struct {
	path    string
	name    string // top-level variable name
	header  string // everything up to and including the opening brace
	trailer string // everything from before the closing brace to EOF
	nodes   []node
}

// Load reads and parses the SavedVariables file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read saved variables: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		switch e := err.(type) {
		case *ParseError:
			e.Path = path
		case *SchemaError:
			e.Path = path
		}
		return nil, err
	}
	doc.path = path
	return doc, nil
}

// Parse parses a SavedVariables document from raw bytes.
func Parse(data []byte) (*Document, error) {
	s := newScanner(data)
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}
	if s.eof() {
		return nil, &SchemaError{Msg: "empty document, expected a table assignment"}
	}

	name := s.scanIdent()
	if name == "" {
		return nil, &SchemaError{Msg: "expected a top-level variable name"}
	}
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}
	if s.eof() || s.peek() != '=' {
		return nil, &SchemaError{Msg: fmt.Sprintf("expected %q to be assigned a table", name)}
	}
	s.next()
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}
	if s.eof() || s.peek() != '{' {
		return nil, &SchemaError{Msg: fmt.Sprintf("top-level value of %q is not a table", name)}
	}
	s.next()

	doc := &Document{
		name:   name,
		header: string(data[:s.pos]),
	}

	for {
		spanStart := s.pos
		if err := s.skipTrivia(); err != nil {
			return nil, err
		}
		if s.eof() {
			return nil, s.errf("unterminated table: missing closing brace")
		}
		if s.peek() == '}' {
			doc.trailer = string(data[spanStart:])
			break
		}
		if err := s.scanElement(); err != nil {
			return nil, err
		}
		doc.nodes = append(doc.nodes, classify(string(data[spanStart:s.pos])))
	}

	return doc, nil
}

// managedEntryRe matches a whole entry span of the shape
// ["label"] = { ... }, — the only shape archonup ever writes.
var managedEntryRe = regexp.MustCompile(`(?s)^\s*\[\s*"((?:[^"\\]|\\.)*)"\s*\]\s*=\s*\{(.*)\}\s*[,;]?\s*$`)

// managedFieldRe matches one ["key"] = "value" field inside an entry body.
var managedFieldRe = regexp.MustCompile(`\[\s*"([a-z]+)"\s*\]\s*=\s*"((?:[^"\\]|\\.)*)"`)

// classify decides whether a span is a managed entry. Anything that does
// not fully match the managed shape, label suffix and field set stays
// opaque; when in doubt, not ours.
func classify(raw string) node {
	m := managedEntryRe.FindStringSubmatch(raw)
	if m == nil {
		return node{raw: raw}
	}
	label := luaUnquote(m[1])
	if !strings.HasSuffix(label, ManagedSuffix) {
		return node{raw: raw}
	}

	fields := make(map[string]string)
	for _, f := range managedFieldRe.FindAllStringSubmatch(m[2], -1) {
		fields[f[1]] = luaUnquote(f[2])
	}
	for _, required := range []string{"character", "class", "spec", "content", "code"} {
		if fields[required] == "" {
			return node{raw: raw}
		}
	}

	return node{
		raw: raw,
		managed: &ManagedEntry{
			Character: fields["character"],
			Class:     fields["class"],
			Spec:      fields["spec"],
			Content:   fields["content"],
			Code:      fields["code"],
		},
	}
}

// Name returns the top-level variable name.
func (d *Document) Name() string {
	return d.name
}

// Path returns the file path the document was loaded from, if any.
func (d *Document) Path() string {
	return d.path
}

// Managed returns a copy of all managed entries in document order.
func (d *Document) Managed() []ManagedEntry {
	var out []ManagedEntry
	for _, n := range d.nodes {
		if n.managed != nil {
			out = append(out, *n.managed)
		}
	}
	return out
}

// OpaqueCount returns the number of entries not owned by archonup.
func (d *Document) OpaqueCount() int {
	count := 0
	for _, n := range d.nodes {
		if n.managed == nil {
			count++
		}
	}
	return count
}

// ClearManaged removes every managed entry, leaving opaque entries
// untouched and in their original relative order. Returns the number of
// entries removed.
func (d *Document) ClearManaged() int {
	kept := d.nodes[:0]
	removed := 0
	for _, n := range d.nodes {
		if n.managed != nil {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	d.nodes = kept
	return removed
}

// Upsert inserts a managed entry, or replaces the existing entry with the
// same key in place. Returns true when an existing entry was replaced.
func (d *Document) Upsert(e ManagedEntry) bool {
	for i, n := range d.nodes {
		if n.managed != nil && n.managed.Key() == e.Key() {
			d.nodes[i] = node{managed: &e}
			return true
		}
	}
	d.nodes = append(d.nodes, node{managed: &e})
	return false
}

// Serialize renders the document in its native format. Opaque spans and
// the header/trailer are reproduced exactly; managed entries are
// re-rendered from their in-memory state.
func (d *Document) Serialize() []byte {
	var sb strings.Builder
	sb.WriteString(d.header)
	for _, n := range d.nodes {
		if n.managed != nil {
			n.managed.render(&sb)
			continue
		}
		sb.WriteString(n.raw)
	}
	sb.WriteString(d.trailer)
	return []byte(sb.String())
}

// WriteFile serializes the document and writes it atomically: the bytes
// land in a temp file in the target directory, then rename over the
// destination. The file on disk is never left half-written.
func (d *Document) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".archonup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(d.Serialize()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
