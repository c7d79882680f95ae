package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fmtOutput string

var fmtCmd = &cobra.Command{
	Use:   "fmt <document>",
	Short: "Normalize a document",
	Long: `Parse a schematic document and write it back out in canonical
form: wires simplified, formatting normalized. Writes to stdout unless
-o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().StringVarP(&fmtOutput, "output", "o", "", "output file (default stdout)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	doc, warnings, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	printWarnings(warnings)

	for _, n := range doc.Scene.Nets() {
		n.Simplify()
	}

	if fmtOutput == "" {
		return doc.Save(os.Stdout)
	}
	if err := doc.SaveFile(fmtOutput); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
