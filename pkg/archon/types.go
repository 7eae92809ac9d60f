package archon

import "fmt"

// Kind discriminates the two content types Archon publishes builds for.
type Kind int

const (
	KindRaid Kind = iota
	KindDungeon
)

func (k Kind) String() string {
	if k == KindDungeon {
		return "dungeon"
	}
	return "raid"
}

// Period selects the Mythic+ rotation snapshot a dungeon page covers.
type Period string

const (
	PeriodThisWeek Period = "this-week"
	PeriodLastWeek Period = "last-week"
)

// Target identifies one build page: a class/spec pair plus either a raid
// boss at a difficulty or a dungeon at a rotation period. All name fields
// are canonical URL tokens.
type Target struct {
	Class string
	Spec  string
	Kind  Kind

	// Raid targets.
	Boss       string
	Difficulty string

	// Dungeon targets.
	Dungeon string
	Period  Period
}

// Path returns the URL path for this target relative to the builds root.
func (t Target) Path() string {
	if t.Kind == KindDungeon {
		return fmt.Sprintf("/%s/%s/mythic-plus/talents/%s/%s", t.Spec, t.Class, t.Dungeon, t.Period)
	}
	return fmt.Sprintf("/%s/%s/raid/talents/%s/%s", t.Spec, t.Class, t.Difficulty, t.Boss)
}

func (t Target) String() string {
	if t.Kind == KindDungeon {
		return fmt.Sprintf("%s/%s %s (%s)", t.Class, t.Spec, t.Dungeon, t.Period)
	}
	return fmt.Sprintf("%s/%s %s (%s)", t.Class, t.Spec, t.Boss, t.Difficulty)
}

// Status classifies the result of a single fetch.
type Status int

const (
	// StatusFound means a build code was extracted from the page.
	StatusFound Status = iota
	// StatusNotAvailable means the page exists but carries no build for
	// the target (or Archon reported insufficient data).
	StatusNotAvailable
	// StatusError means the request failed at the transport or HTTP level.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotAvailable:
		return "not-available"
	default:
		return "error"
	}
}

// Outcome is the result of fetching one target. It is always a value:
// transport failures are carried in Err, never raised past the fetcher.
type Outcome struct {
	Status Status
	Code   string // build code, set only when Status == StatusFound
	Err    error  // failure reason, set only when Status == StatusError
}

// Found wraps an extracted build code.
func Found(code string) Outcome {
	return Outcome{Status: StatusFound, Code: code}
}

// NotAvailable marks a target Archon has no build for.
func NotAvailable() Outcome {
	return Outcome{Status: StatusNotAvailable}
}

// TransportError wraps a request failure.
func TransportError(err error) Outcome {
	return Outcome{Status: StatusError, Err: err}
}
