// Command engine is the local daymark backend: it aggregates job listings,
// hands out a daily slate and schedules the day's tasks around calendar
// busy time.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dataDirFlag string

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Daymark local engine",
	Long:  "Daymark aggregates job listings, hands out a bounded daily slate and auto-shifts the day's tasks around calendar busy time. Without a subcommand it serves the HTTP API.",
	// serve is the default
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (defaults to DAYMARK_DATA_DIR, then ~/.daymark)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
