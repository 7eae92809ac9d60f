package update

import "strings"

// ValidationError aggregates every class/spec problem in a selection so
// the user can fix them all at once. Raised before any network or file
// I/O.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid selection"
	}
	var sb strings.Builder
	sb.WriteString("invalid selection:")
	for _, p := range e.Problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p)
	}
	return sb.String()
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) hasProblems() bool {
	return len(e.Problems) > 0
}
