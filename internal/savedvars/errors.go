package savedvars

import "fmt"

// ParseError reports a lexical failure in the SavedVariables file. The
// document is unusable; callers must not write anything back.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s: line %d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse: line %d: %s", e.Line, e.Msg)
}

// SchemaError reports a file that lexes fine but does not have the
// expected top-level shape (a single `Name = { ... }` assignment).
// Also fatal: guessing at the structure risks corrupting user data.
type SchemaError struct {
	Path string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema %s: %s", e.Path, e.Msg)
	}
	return "schema: " + e.Msg
}
