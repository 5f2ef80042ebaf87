package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "drift",
	Short: "Generative ambient drone instrument",
	Long: "drift synthesizes an evolving ambient drone from a handful of\n" +
		"texture controls. Run 'drift play' for live audio or 'drift render'\n" +
		"to write a take straight to disk.",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
