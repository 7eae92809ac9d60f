package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/archonup/archonup/pkg/archon"
)

// Counts tallies outcomes for one content category.
type Counts struct {
	Found        int
	NotAvailable int
	Errors       int
}

// TargetFailure describes one target that did not produce a build.
type TargetFailure struct {
	Character string
	Target    string
	Status    archon.Status
	Reason    string // underlying error text for transport failures
}

// RunReport summarizes a completed run for display. A run with
// not-available or transport-error targets is still a successful run;
// only document-level failures abort before a report exists.
type RunReport struct {
	Raids    Counts
	Dungeons Counts
	Failures []TargetFailure
	Duration time.Duration
}

func (r *RunReport) record(item workItem, outcome archon.Outcome) {
	counts := &r.Raids
	if item.target.Kind == archon.KindDungeon {
		counts = &r.Dungeons
	}

	switch outcome.Status {
	case archon.StatusFound:
		counts.Found++
		return
	case archon.StatusNotAvailable:
		counts.NotAvailable++
	case archon.StatusError:
		counts.Errors++
	}

	failure := TargetFailure{
		Character: item.character,
		Target:    item.target.String(),
		Status:    outcome.Status,
	}
	if outcome.Err != nil {
		failure.Reason = outcome.Err.Error()
	}
	r.Failures = append(r.Failures, failure)
}

// TotalFound returns the number of builds committed to the document.
func (r *RunReport) TotalFound() int {
	return r.Raids.Found + r.Dungeons.Found
}

// Summary renders a human-readable status block.
func (r *RunReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d builds updated, %d not available, %d errors (%s)",
		r.TotalFound(),
		r.Raids.NotAvailable+r.Dungeons.NotAvailable,
		r.Raids.Errors+r.Dungeons.Errors,
		r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "\n  raids:    %d found, %d not available, %d errors",
		r.Raids.Found, r.Raids.NotAvailable, r.Raids.Errors)
	fmt.Fprintf(&sb, "\n  dungeons: %d found, %d not available, %d errors",
		r.Dungeons.Found, r.Dungeons.NotAvailable, r.Dungeons.Errors)

	if len(r.Failures) > 0 {
		sb.WriteString("\nskipped targets:")
		for _, f := range r.Failures {
			fmt.Fprintf(&sb, "\n  - %s %s: %s", f.Character, f.Target, f.Status)
			if f.Reason != "" {
				fmt.Fprintf(&sb, " (%s)", f.Reason)
			}
		}
	}
	return sb.String()
}
