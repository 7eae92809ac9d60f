package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archonup/archonup/internal/config"
	"github.com/archonup/archonup/internal/update"
)

var validateCmd = &cobra.Command{
	Use:   "validate <selection.json>",
	Short: "Check a selection file without fetching anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateCmd,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	sel, err := config.LoadSelection(args[0])
	if err != nil {
		return err
	}

	if err := update.Validate(sel); err != nil {
		return err
	}

	targets := update.CountTargets(sel)
	fmt.Printf("%s: ok (%d characters, %d fetch targets)\n", args[0], len(sel.Characters), targets)
	return nil
}
