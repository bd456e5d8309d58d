package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docsection",
	Short: "Split long documents into ordered, bounded sections",
	Long: `docsection decomposes a long PDF into labeled content sections using the
document's table of contents, trimming front and back matter and splitting
oversized sections until each fits a token budget.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
