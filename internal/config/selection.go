package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archonup/archonup/internal/update"
)

// selectionFile is the JSON shape of a selection document.
type selectionFile struct {
	Characters []struct {
		Name            string   `json:"name"`
		Class           string   `json:"class"`
		Specializations []string `json:"specializations"`
	} `json:"characters"`
	RaidDifficulties    []string `json:"raidDifficulties"`
	RaidBosses          []string `json:"raidBosses"`
	Dungeons            []string `json:"dungeons"`
	ClearPreviousBuilds bool     `json:"clearPreviousBuilds"`
	OutputPath          string   `json:"outputPath"`
}

// LoadSelection reads a selection document from a JSON file. Class and
// specialization names are validated later by the orchestrator, before
// any network activity.
func LoadSelection(path string) (update.Selection, error) {
	var sel update.Selection

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, fmt.Errorf("reading selection: %w", err)
	}

	var f selectionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return sel, fmt.Errorf("parsing selection %s: %w", path, err)
	}

	for _, ch := range f.Characters {
		sel.Characters = append(sel.Characters, update.Character{
			Name:  ch.Name,
			Class: ch.Class,
			Specs: ch.Specializations,
		})
	}
	sel.RaidDifficulties = f.RaidDifficulties
	sel.RaidBosses = f.RaidBosses
	sel.Dungeons = f.Dungeons
	sel.ClearPreviousBuilds = f.ClearPreviousBuilds
	sel.OutputPath = f.OutputPath

	return sel, nil
}
