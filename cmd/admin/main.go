package main

import (
	"fmt"
	"os"

	"github.com/cardfile/cardfile/cmd/admin/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cardfile-admin",
		Short: "Administration tool for the cardfile API",
		Long:  "CLI tool for ingesting notes, running analysis, and inspecting the card store",
	}

	rootCmd.AddCommand(commands.NewNoteCmd())
	rootCmd.AddCommand(commands.NewAnalyzeCmd())
	rootCmd.AddCommand(commands.NewSuggestionsCmd())
	rootCmd.AddCommand(commands.NewEnvelopesCmd())
	rootCmd.AddCommand(commands.NewContextsCmd())
	rootCmd.AddCommand(commands.NewSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
