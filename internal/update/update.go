// Package update orchestrates one reconciliation run: it expands a
// Selection into fetch targets, drives the Archon fetcher under a bounded
// concurrency and rate budget, and commits the net change set to the
// SavedVariables document in a single atomic write.
package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/archonup/archonup/internal/savedvars"
	"github.com/archonup/archonup/internal/wow"
	"github.com/archonup/archonup/pkg/archon"
)

const defaultConcurrency = 5

// Character is one character declared in the selection.
type Character struct {
	Name  string
	Class string
	Specs []string
}

// Selection is the full unit of work for a run. It is built by the
// configuration loader and treated as read-only here.
type Selection struct {
	Characters          []Character
	RaidDifficulties    []string
	RaidBosses          []string
	Dungeons            []string
	ClearPreviousBuilds bool
	OutputPath          string
}

// Fetcher fetches one build target. Implemented by archon.Client.
type Fetcher interface {
	FetchBuild(ctx context.Context, target archon.Target) archon.Outcome
}

// BuildCache is an optional cache of previously fetched build codes,
// keyed by target path.
type BuildCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, code string) error
}

// Orchestrator runs selections against a fetcher and a SavedVariables file.
type Orchestrator struct {
	fetcher     Fetcher
	cache       BuildCache
	concurrency int
	log         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency bounds the number of in-flight fetches.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithCache enables the build-code cache.
func WithCache(c BuildCache) Option {
	return func(o *Orchestrator) {
		o.cache = c
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log.With("component", "update")
	}
}

// New creates an Orchestrator around a fetcher.
func New(fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:     fetcher,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// resolvedCharacter is a Character with canonical tokens, produced by
// validation before any I/O.
type resolvedCharacter struct {
	name  string
	class string
	specs []string
}

// workItem is one concrete fetch plus the identity its result commits
// under. Ephemeral: created and consumed within a single run.
type workItem struct {
	character string
	content   string // content identity, e.g. "raid:broodtwister:heroic"
	target    archon.Target
}

// Run executes the full reconciliation. Target-level failures are
// recorded in the report and never abort the run; validation, document,
// and write failures abort with no file write.
func (o *Orchestrator) Run(ctx context.Context, sel Selection) (*RunReport, error) {
	start := time.Now()

	resolved, err := validate(sel)
	if err != nil {
		return nil, err
	}

	doc, err := savedvars.Load(sel.OutputPath)
	if err != nil {
		return nil, err
	}

	if sel.ClearPreviousBuilds {
		removed := doc.ClearManaged()
		if o.log != nil {
			o.log.Info("cleared previous managed builds", "removed", removed)
		}
	}

	items := expand(resolved, sel)
	if o.log != nil {
		o.log.Info("run started", "targets", len(items), "concurrency", o.concurrency)
	}

	// Workers write only their own result slot; the document is mutated
	// solely in the aggregation loop below.
	results := make([]archon.Outcome, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = o.fetchOne(gctx, item)
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	report := &RunReport{}
	for i, item := range items {
		outcome := results[i]
		report.record(item, outcome)
		if outcome.Status != archon.StatusFound {
			continue
		}
		doc.Upsert(savedvars.ManagedEntry{
			Character: item.character,
			Class:     item.target.Class,
			Spec:      item.target.Spec,
			Content:   item.content,
			Code:      outcome.Code,
		})
	}

	if err := doc.WriteFile(sel.OutputPath); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	if o.log != nil {
		o.log.Info("run finished",
			"found", report.Raids.Found+report.Dungeons.Found,
			"not_available", report.Raids.NotAvailable+report.Dungeons.NotAvailable,
			"errors", report.Raids.Errors+report.Dungeons.Errors,
			"duration_ms", report.Duration.Milliseconds())
	}
	return report, nil
}

// fetchOne resolves a single work item, applying the last-week fallback
// for dungeon targets whose current rotation has no data yet. The
// fallback is sequential within the worker: it is dispatched only once
// the primary outcome is known to be not-available.
func (o *Orchestrator) fetchOne(ctx context.Context, item workItem) archon.Outcome {
	outcome := o.fetchCached(ctx, item.target)
	if item.target.Kind == archon.KindDungeon && outcome.Status == archon.StatusNotAvailable {
		fallback := item.target
		fallback.Period = archon.PeriodLastWeek
		if o.log != nil {
			o.log.Debug("falling back to previous rotation", "target", item.target.String())
		}
		outcome = o.fetchCached(ctx, fallback)
	}
	return outcome
}

func (o *Orchestrator) fetchCached(ctx context.Context, target archon.Target) archon.Outcome {
	key := target.Path()
	if o.cache != nil {
		if code, ok := o.cache.Get(ctx, key); ok {
			return archon.Found(code)
		}
	}
	outcome := o.fetcher.FetchBuild(ctx, target)
	if outcome.Status == archon.StatusFound && o.cache != nil {
		if err := o.cache.Set(ctx, key, outcome.Code); err != nil && o.log != nil {
			o.log.Warn("failed to cache build code", "target", target.String(), "error", err)
		}
	}
	return outcome
}

// Validate checks a selection's class/spec combinations and output path
// without performing any I/O. Returns a *ValidationError on problems.
func Validate(sel Selection) error {
	_, err := validate(sel)
	return err
}

// CountTargets returns the number of fetch targets a selection expands
// to, not counting dungeon fallbacks. Returns 0 for invalid selections.
func CountTargets(sel Selection) int {
	resolved, err := validate(sel)
	if err != nil {
		return 0
	}
	return len(expand(resolved, sel))
}

// validate canonicalizes every character's class and specs, collecting
// all problems so the user sees them in one pass. Runs before any I/O.
func validate(sel Selection) ([]resolvedCharacter, error) {
	verr := &ValidationError{}
	if sel.OutputPath == "" {
		verr.add("output path is required")
	}

	resolved := make([]resolvedCharacter, 0, len(sel.Characters))
	for _, ch := range sel.Characters {
		classToken, err := wow.ClassToken(ch.Class)
		if err != nil {
			verr.add(fmt.Sprintf("character %q: %v", ch.Name, err))
			continue
		}
		rc := resolvedCharacter{name: ch.Name, class: classToken}
		for _, spec := range ch.Specs {
			specToken, err := wow.SpecToken(classToken, spec)
			if err != nil {
				verr.add(fmt.Sprintf("character %q: %v", ch.Name, err))
				continue
			}
			rc.specs = append(rc.specs, specToken)
		}
		resolved = append(resolved, rc)
	}

	if verr.hasProblems() {
		return nil, verr
	}
	return resolved, nil
}

// expand derives the full work list: characters x specs x raid bosses x
// difficulties, plus characters x specs x dungeons (current rotation).
func expand(resolved []resolvedCharacter, sel Selection) []workItem {
	var items []workItem
	for _, ch := range resolved {
		for _, spec := range ch.specs {
			for _, boss := range sel.RaidBosses {
				bossToken := wow.BossToken(boss)
				for _, diff := range sel.RaidDifficulties {
					diffToken := wow.Slug(diff)
					items = append(items, workItem{
						character: ch.name,
						content:   fmt.Sprintf("raid:%s:%s", bossToken, diffToken),
						target: archon.Target{
							Class:      ch.class,
							Spec:       spec,
							Kind:       archon.KindRaid,
							Boss:       bossToken,
							Difficulty: diffToken,
						},
					})
				}
			}
			for _, dungeon := range sel.Dungeons {
				dungeonToken := wow.DungeonToken(dungeon)
				items = append(items, workItem{
					character: ch.name,
					content:   "dungeon:" + dungeonToken,
					target: archon.Target{
						Class:   ch.class,
						Spec:    spec,
						Kind:    archon.KindDungeon,
						Dungeon: dungeonToken,
						Period:  archon.PeriodThisWeek,
					},
				})
			}
		}
	}
	return items
}
