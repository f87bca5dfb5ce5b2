// cmd_inspect.go - inspect Command
// Hauptfunktionen: InspectHandler, newInspectCmd
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/segprep/segprep/datasets"
	"github.com/segprep/segprep/pipeline"
)

// InspectHandler - Laesst die Pipeline eines Teils laufen und zeigt jedes Sample
func InspectHandler(cmd *cobra.Command, args []string) error {
	opts, err := splitOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	extensions, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}

	name, err := cmd.Flags().GetString("colormap")
	if err != nil {
		return err
	}

	colorMap, err := colorMapFromFlag(name)
	if err != nil {
		return err
	}

	typ, err := cmd.Flags().GetString("type")
	if err != nil {
		return err
	}

	dt, err := datasets.ParseDataType(typ)
	if err != nil {
		return err
	}

	ordered, err := cmd.Flags().GetBool("ordered")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	ds, err := datasets.PairDatasetFromDirs(args[0], args[1], extensions, colorMap, opts...)
	if err != nil {
		return err
	}

	p := datasets.ToPipeline(ds, dt, datasets.WithRandomize(!ordered))
	if limit > 0 {
		p = p.Take(limit)
	}

	table := newTable(cmd.OutOrStdout(), "#", "IMAGE", "LABELS", "CLASSES", "PRESENT")

	var i int
	err = pipeline.ForEach(cmd.Context(), p, func(s datasets.Sample) error {
		table.Append([]string{
			strconv.Itoa(i),
			shapeString(s.Image.Shape),
			shapeString(s.Labels.Shape),
			strconv.FormatInt(s.NumClasses, 10),
			presentClasses(s.Labels.Data),
		})
		i++
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d %s samples\n", i, ds.NumExamples(dt), dt)
	return nil
}

func shapeString(shape []int) string {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	return strings.Join(dims, "x")
}

// presentClasses - Sortierte Liste der in der Maske vorkommenden Klassen
func presentClasses(data []uint8) string {
	var seen [256]bool
	for _, v := range data {
		seen[v] = true
	}

	var classes []string
	for v, ok := range seen {
		if ok {
			classes = append(classes, strconv.Itoa(v))
		}
	}
	return strings.Join(classes, ",")
}

// newInspectCmd - Erstellt den inspect Command
func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect IMAGES LABELS",
		Short: "Run the data pipeline for one split and show every sample",
		Args:  cobra.ExactArgs(2),
		RunE:  InspectHandler,
	}

	addSplitFlags(inspectCmd)
	inspectCmd.Flags().String("type", string(datasets.TypeTrain), "Split to inspect (train, test or val)")
	inspectCmd.Flags().String("colormap", "voc", `Color map: "voc", "binary" or a JSON file`)
	inspectCmd.Flags().Bool("ordered", false, "Do not permute the samples of each pass")
	inspectCmd.Flags().Int("limit", 0, "Show at most this many samples (0 = all)")

	return inspectCmd
}
