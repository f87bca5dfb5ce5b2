// cmd_split.go - split Command
// Hauptfunktionen: SplitHandler, newSplitCmd
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/segprep/segprep/datasets"
)

// Manifest - Ergebnis eines split-Laufs als JSON
type Manifest struct {
	ID        string                        `json:"id"`
	CreatedAt time.Time                     `json:"created_at"`
	Images    string                        `json:"images"`
	Labels    string                        `json:"labels"`
	Split     datasets.Split[datasets.Pair] `json:"split"`
}

// SplitHandler - Paart Bilder und Labels und teilt sie auf
func SplitHandler(cmd *cobra.Command, args []string) error {
	opts, err := splitOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	extensions, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}

	split, err := datasets.SplitFromDirs(args[0], args[1], extensions, opts...)
	if err != nil {
		return err
	}

	var data [][]string
	for _, dt := range datasets.DataTypes() {
		data = append(data, []string{dt.String(), strconv.Itoa(len(split[dt]))})
	}

	table := newTable(cmd.OutOrStdout(), "SPLIT", "FILES")
	table.AppendBulk(data)
	table.Render()

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		return nil
	}

	m := Manifest{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Images:    args[0],
		Labels:    args[1],
		Split:     split,
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, b, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote manifest %s to %s\n", m.ID, output)
	return nil
}

// newSplitCmd - Erstellt den split Command
func newSplitCmd() *cobra.Command {
	splitCmd := &cobra.Command{
		Use:   "split IMAGES LABELS",
		Short: "Split paired image and label files into train, test and val",
		Args:  cobra.ExactArgs(2),
		RunE:  SplitHandler,
	}

	addSplitFlags(splitCmd)
	splitCmd.Flags().StringP("output", "o", "", "Write the split as JSON manifest to this file")

	return splitCmd
}
