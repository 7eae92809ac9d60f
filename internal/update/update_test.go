package update_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/archonup/archonup/internal/savedvars"
	"github.com/archonup/archonup/internal/update"
	"github.com/archonup/archonup/internal/update/mocks"
	"github.com/archonup/archonup/pkg/archon"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const baseDoc = `TalentLoadoutsDB = {
	["Handmade Build"] = {
		["code"] = "USER111",
	},
}
`

// writeDoc writes a SavedVariables fixture and returns its path.
func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "TalentLoadouts.lua")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadDoc(t *testing.T, path string) *savedvars.Document {
	t.Helper()
	doc, err := savedvars.Load(path)
	require.NoError(t, err)
	return doc
}

func singleRaidSelection(path string) update.Selection {
	return update.Selection{
		Characters: []update.Character{
			{Name: "Mank", Class: "Warrior", Specs: []string{"arms"}},
		},
		RaidDifficulties: []string{"heroic"},
		RaidBosses:       []string{"broodtwister"},
		OutputPath:       path,
	}
}

func broodtwisterTarget() archon.Target {
	return archon.Target{
		Class:      "warrior",
		Spec:       "arms",
		Kind:       archon.KindRaid,
		Boss:       "broodtwister",
		Difficulty: "heroic",
	}
}

func TestRun_SingleRaidTargetFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchBuild(gomock.Any(), broodtwisterTarget()).
		Return(archon.Found("C4tAAAA"))

	o := update.New(fetcher, update.WithLogger(testLogger()))
	report, err := o.Run(context.Background(), singleRaidSelection(path))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Raids.Found)
	assert.Zero(t, report.Raids.NotAvailable)
	assert.Zero(t, report.Raids.Errors)
	assert.Empty(t, report.Failures)

	doc := loadDoc(t, path)
	managed := doc.Managed()
	require.Len(t, managed, 1)
	assert.Equal(t, savedvars.ManagedEntry{
		Character: "Mank",
		Class:     "warrior",
		Spec:      "arms",
		Content:   "raid:broodtwister:heroic",
		Code:      "C4tAAAA",
	}, managed[0])
	assert.Equal(t, 1, doc.OpaqueCount(), "user entry preserved")
}

func TestRun_SingleRaidTargetNotAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchBuild(gomock.Any(), gomock.Any()).
		Return(archon.NotAvailable())

	o := update.New(fetcher)
	report, err := o.Run(context.Background(), singleRaidSelection(path))
	require.NoError(t, err)

	assert.Zero(t, report.Raids.Found)
	assert.Equal(t, 1, report.Raids.NotAvailable)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, archon.StatusNotAvailable, report.Failures[0].Status)

	doc := loadDoc(t, path)
	assert.Empty(t, doc.Managed(), "document gains no entry")
	assert.Equal(t, 1, doc.OpaqueCount())
}

func TestRun_DungeonFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	thisWeek := archon.Target{
		Class:   "warrior",
		Spec:    "arms",
		Kind:    archon.KindDungeon,
		Dungeon: "ara-kara",
		Period:  archon.PeriodThisWeek,
	}
	lastWeek := thisWeek
	lastWeek.Period = archon.PeriodLastWeek

	fetcher := mocks.NewMockFetcher(ctrl)
	gomock.InOrder(
		fetcher.EXPECT().FetchBuild(gomock.Any(), thisWeek).Return(archon.NotAvailable()),
		fetcher.EXPECT().FetchBuild(gomock.Any(), lastWeek).Return(archon.Found("X")),
	)

	sel := update.Selection{
		Characters: []update.Character{
			{Name: "Mank", Class: "warrior", Specs: []string{"arms"}},
		},
		Dungeons:   []string{"ara-kara"},
		OutputPath: path,
	}

	o := update.New(fetcher)
	report, err := o.Run(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Dungeons.Found, "fallback result counts as found")
	assert.Zero(t, report.Dungeons.NotAvailable)

	doc := loadDoc(t, path)
	managed := doc.Managed()
	require.Len(t, managed, 1)
	assert.Equal(t, "X", managed[0].Code)
	assert.Equal(t, "dungeon:ara-kara", managed[0].Content)
}

func TestRun_DungeonFallbackAlsoNotAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	fetcher := mocks.NewMockFetcher(ctrl)
	// Exactly two fetches: primary and one fallback, then give up.
	fetcher.EXPECT().FetchBuild(gomock.Any(), gomock.Any()).Return(archon.NotAvailable()).Times(2)

	sel := update.Selection{
		Characters: []update.Character{
			{Name: "Mank", Class: "warrior", Specs: []string{"arms"}},
		},
		Dungeons:   []string{"ara-kara"},
		OutputPath: path,
	}

	o := update.New(fetcher)
	report, err := o.Run(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Dungeons.NotAvailable)
	assert.Empty(t, loadDoc(t, path).Managed())
}

func TestRun_TransportErrorIsolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	boom := errors.New("connection reset")
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchBuild(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, target archon.Target) archon.Outcome {
			if target.Boss == "broodtwister" {
				return archon.TransportError(boom)
			}
			return archon.Found("OK1")
		}).
		Times(2)

	sel := singleRaidSelection(path)
	sel.RaidBosses = []string{"broodtwister", "queen-ansurek"}

	o := update.New(fetcher)
	report, err := o.Run(context.Background(), sel)
	require.NoError(t, err, "target failures never abort the run")

	assert.Equal(t, 1, report.Raids.Found)
	assert.Equal(t, 1, report.Raids.Errors)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Reason, "connection reset")

	doc := loadDoc(t, path)
	require.Len(t, doc.Managed(), 1, "successful sibling still committed")
	assert.Equal(t, "OK1", doc.Managed()[0].Code)
}

func TestRun_IdempotentAcrossRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchBuild(gomock.Any(), gomock.Any()).
		Return(archon.Found("SAME")).
		Times(2)

	o := update.New(fetcher)
	sel := singleRaidSelection(path)

	_, err := o.Run(context.Background(), sel)
	require.NoError(t, err)
	_, err = o.Run(context.Background(), sel)
	require.NoError(t, err)

	doc := loadDoc(t, path)
	assert.Len(t, doc.Managed(), 1, "re-running replaces, never duplicates")
	assert.Equal(t, 1, doc.OpaqueCount())
}

func TestRun_ClearPreviousBuilds(t *testing.T) {
	ctrl := gomock.NewController(t)

	// Document seeded with a stale managed entry for a boss no longer in
	// the selection.
	seeded := `TalentLoadoutsDB = {
	["Handmade Build"] = {
		["code"] = "USER111",
	},
	["Mank - Arms - Old Boss (Heroic) [Archon]"] = {
		["character"] = "Mank",
		["class"] = "warrior",
		["code"] = "STALE",
		["content"] = "raid:old-boss:heroic",
		["spec"] = "arms",
	},
}
`
	path := writeDoc(t, seeded)

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().FetchBuild(gomock.Any(), gomock.Any()).Return(archon.Found("FRESH"))

	sel := singleRaidSelection(path)
	sel.ClearPreviousBuilds = true

	o := update.New(fetcher)
	_, err := o.Run(context.Background(), sel)
	require.NoError(t, err)

	doc := loadDoc(t, path)
	managed := doc.Managed()
	require.Len(t, managed, 1)
	assert.Equal(t, "FRESH", managed[0].Code)
	assert.Equal(t, 1, doc.OpaqueCount(), "user entry survives the clear")
}

func TestRun_ExpansionFanout(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	// 1 char x 2 specs x (2 bosses x 2 difficulties + 1 dungeon) = 10.
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchBuild(gomock.Any(), gomock.Any()).
		Return(archon.Found("CODE")).
		Times(10)

	sel := update.Selection{
		Characters: []update.Character{
			{Name: "Mank", Class: "warrior", Specs: []string{"arms", "fury"}},
		},
		RaidDifficulties: []string{"heroic", "mythic"},
		RaidBosses:       []string{"broodtwister", "queen-ansurek"},
		Dungeons:         []string{"the-dawnbreaker"},
		OutputPath:       path,
	}

	o := update.New(fetcher, update.WithConcurrency(3))
	report, err := o.Run(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, 8, report.Raids.Found)
	assert.Equal(t, 2, report.Dungeons.Found)
	assert.Len(t, loadDoc(t, path).Managed(), 10)
}

func TestRun_ValidationFailsBeforeAnyIO(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	// No EXPECT calls: any fetch would fail the test.
	fetcher := mocks.NewMockFetcher(ctrl)

	sel := singleRaidSelection(path)
	sel.Characters = append(sel.Characters, update.Character{
		Name: "Typo", Class: "warlock", Specs: []string{"furry"},
	})

	o := update.New(fetcher)
	_, err := o.Run(context.Background(), sel)
	require.Error(t, err)

	var verr *update.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Contains(t, verr.Problems[0], "Typo")
	assert.Contains(t, verr.Problems[0], "furry")
}

func TestRun_LoadFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl) // must never be called

	sel := singleRaidSelection(filepath.Join(t.TempDir(), "missing.lua"))

	o := update.New(fetcher)
	_, err := o.Run(context.Background(), sel)
	require.Error(t, err)
}

func TestRun_SchemaFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, "return 42\n")
	fetcher := mocks.NewMockFetcher(ctrl)

	o := update.New(fetcher)
	_, err := o.Run(context.Background(), singleRaidSelection(path))
	require.Error(t, err)

	var serr *savedvars.SchemaError
	assert.ErrorAs(t, err, &serr)
}

func TestRun_CacheHitSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	fetcher := mocks.NewMockFetcher(ctrl) // never called on cache hit
	cache := mocks.NewMockBuildCache(ctrl)
	cache.EXPECT().
		Get(gomock.Any(), broodtwisterTarget().Path()).
		Return("CACHED", true)

	o := update.New(fetcher, update.WithCache(cache))
	report, err := o.Run(context.Background(), singleRaidSelection(path))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Raids.Found)
	doc := loadDoc(t, path)
	require.Len(t, doc.Managed(), 1)
	assert.Equal(t, "CACHED", doc.Managed()[0].Code)
}

func TestRun_CacheMissFetchesAndStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeDoc(t, baseDoc)

	key := broodtwisterTarget().Path()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().FetchBuild(gomock.Any(), broodtwisterTarget()).Return(archon.Found("NEW"))

	cache := mocks.NewMockBuildCache(ctrl)
	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), key).Return("", false),
		cache.EXPECT().Set(gomock.Any(), key, "NEW").Return(nil),
	)

	o := update.New(fetcher, update.WithCache(cache))
	_, err := o.Run(context.Background(), singleRaidSelection(path))
	require.NoError(t, err)
}

func TestValidationError_Message(t *testing.T) {
	err := &update.ValidationError{Problems: []string{"a", "b"}}
	assert.Equal(t, "invalid selection:\n  - a\n  - b", err.Error())
}
