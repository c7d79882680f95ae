package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "otsch",
	Short: "OpenTraceSchematic - schematic document tools",
	Long: `OpenTraceSchematic (otsch) inspects and processes schematic
documents stored in the record text format.

Examples:
  otsch info design.otsch             # Show document summary
  otsch nets design.otsch             # List wire nets
  otsch nets design.otsch --name vcc  # Show nets matching a name
  otsch fmt design.otsch -o out.otsch # Normalize a document`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
