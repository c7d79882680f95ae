package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/sch"
)

var infoCmd = &cobra.Command{
	Use:   "info <document>",
	Short: "Show document information",
	Long: `Display a summary of a schematic document: scene dimensions,
nodes with their connectors, and wire nets.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, warnings, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	printWarnings(warnings)

	fmt.Printf("Document: %s\n", args[0])
	fmt.Printf("Scene: %g x %g at (%g, %g)\n",
		doc.SceneRect.Width, doc.SceneRect.Height,
		doc.SceneRect.X, doc.SceneRect.Y)
	fmt.Println()

	nodes := doc.Scene.Nodes()
	fmt.Printf("Nodes: %d\n", len(nodes))
	for _, n := range nodes {
		pos := n.Position()
		fmt.Printf("  %s at (%g, %g) %gx%g rotation %g\n",
			n.UUID(), pos.X, pos.Y, n.Size().Width, n.Size().Height, n.Rotation())
		if verbose {
			for _, c := range n.Connectors() {
				cp := c.ConnectionPoint()
				fmt.Printf("    connector %q at (%g, %g)\n", c.Text(), cp.X, cp.Y)
			}
		}
	}
	fmt.Println()

	nets := doc.Scene.Nets()
	wireCount := 0
	for _, n := range nets {
		wireCount += n.WireCount()
	}
	fmt.Printf("Nets: %d (%d wires)\n", len(nets), wireCount)
	return nil
}

func loadDocument(filename string) (*sch.Document, []string, error) {
	doc := sch.NewDocument(sch.DefaultSettings())
	warnings, err := doc.LoadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	return doc, warnings, nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
