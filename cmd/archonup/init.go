package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archonup/archonup/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config.toml to the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite existing config.toml")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := "config.toml"
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
