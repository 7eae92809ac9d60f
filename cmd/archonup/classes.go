package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archonup/archonup/internal/wow"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List valid class and specialization tokens",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, class := range wow.Classes() {
			fmt.Printf("%-13s %s\n", class, strings.Join(wow.Specs(class), ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
