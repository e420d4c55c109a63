// Package main provides salesctl, an operator CLI for inspecting and driving
// sale lifecycles and advisor bonuses against the configured database.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	jsonOutput bool
	actorID    string
	actorName  string
)

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Operate sale lifecycles and advisor incentives",
	Long: `salesctl talks directly to the salesflow database using the same
configuration as the API (environment variables or config.yaml).

Examples:
  salesctl allowed sold/shipped                          # Legal next stages
  salesctl transition 7c9e...e1 sold/shipped/received    # Move a sale forward
  salesctl bonus adv42 2026-09 --json                    # Evaluate a bonus
  salesctl jobs run side_effect_retry                    # Run a job once`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "salesctl", "Actor recorded in stage history")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor-name", "Operator CLI", "Display name recorded in stage history")

	rootCmd.AddCommand(allowedCmd)
	rootCmd.AddCommand(transitionCmd)
	rootCmd.AddCommand(bonusCmd)
	rootCmd.AddCommand(jobsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
