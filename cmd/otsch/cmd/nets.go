package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchematic/pkg/sch"
)

var netsName string

var netsCmd = &cobra.Command{
	Use:   "nets <document>",
	Short: "List wire nets",
	Long: `List the wire nets of a schematic document with their wire and
segment counts. Use --name to only show nets matching a name
(case insensitive).`,
	Args: cobra.ExactArgs(1),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
	netsCmd.Flags().StringVar(&netsName, "name", "", "only show nets matching this name")
}

func runNets(cmd *cobra.Command, args []string) error {
	doc, warnings, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	printWarnings(warnings)

	var nets []*sch.Net
	if netsName != "" {
		nets = doc.Scene.NetsByName(netsName)
	} else {
		nets = doc.Scene.Nets()
	}

	if len(nets) == 0 {
		fmt.Println("No nets found")
		return nil
	}

	for i, n := range nets {
		name := n.Name()
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("Net %d: %s\n", i+1, name)
		fmt.Printf("  Wires: %d\n", n.WireCount())
		fmt.Printf("  Segments: %d\n", len(n.LineSegments()))
		if verbose {
			for _, w := range n.Wires() {
				fmt.Printf("  wire %s: %d points\n", w.UUID(), w.PointCount())
			}
		}
	}
	return nil
}
