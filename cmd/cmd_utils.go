// cmd_utils.go - Hilfsfunktionen fuer die Commands
// Hauptfunktionen: newTable, colorMapFromFlag, splitOptionsFromFlags, humanBytes
package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/segprep/segprep/datasets"
	"github.com/segprep/segprep/envconfig"
)

// newTable - Tabelle im Stil von "list": linksbuendig, ohne Rahmen
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// colorMapFromFlag - "voc", "binary" oder Pfad zu einer JSON-Datei
func colorMapFromFlag(name string) (datasets.ColorMap, error) {
	switch name {
	case "voc", "pascal":
		return datasets.PascalVOCColorMap(), nil
	case "binary":
		return datasets.BinaryColorMap(), nil
	default:
		return datasets.LoadColorMap(name)
	}
}

// addSplitFlags - Gemeinsame Flags fuer split und inspect
func addSplitFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("ext", datasets.DefaultExtensions, "File extensions to include")
	cmd.Flags().Float64("train", datasets.DefaultTrainSplit, "Fraction of files used for training")
	cmd.Flags().Float64("val", datasets.DefaultValSplit, "Fraction of the remaining files used for validation")
	cmd.Flags().Bool("no-shuffle", false, "Keep the sorted file order")
	cmd.Flags().Uint64("seed", 0, "Shuffle with a seeded random source instead of the fixed default")
}

// splitOptionsFromFlags - Liest die Flags aus addSplitFlags
func splitOptionsFromFlags(cmd *cobra.Command) ([]datasets.SplitOption, error) {
	train, err := cmd.Flags().GetFloat64("train")
	if err != nil {
		return nil, err
	}

	val, err := cmd.Flags().GetFloat64("val")
	if err != nil {
		return nil, err
	}

	if train < 0 || train > 1 || val < 0 || val > 1 {
		return nil, fmt.Errorf("split fractions must be within [0, 1], got train=%v val=%v", train, val)
	}

	noShuffle, err := cmd.Flags().GetBool("no-shuffle")
	if err != nil {
		return nil, err
	}

	opts := []datasets.SplitOption{
		datasets.WithTrainSplit(train),
		datasets.WithValSplit(val),
		datasets.WithShuffle(!noShuffle && !envconfig.NoShuffle()),
	}

	if cmd.Flags().Changed("seed") {
		seed, err := cmd.Flags().GetUint64("seed")
		if err != nil {
			return nil, err
		}
		opts = append(opts, datasets.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}

	return opts, nil
}

// humanBytes - Formatiert eine Byte-Anzahl (1000er-Basis)
func humanBytes(b int64) string {
	const unit = 1000
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}

	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
