// cmd_download.go - download und tags Commands
// Hauptfunktionen: DownloadHandler, TagsHandler
package cmd

import (
	"errors"
	"fmt"
	"math"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/segprep/segprep/datasets"
	"github.com/segprep/segprep/envconfig"
)

// DownloadHandler - Laedt die Records eines Tags und entpackt sie
func DownloadHandler(cmd *cobra.Command, args []string) error {
	tag := args[0]
	dest := envconfig.Datasets()
	if len(args) > 1 {
		dest = args[1]
	}

	stderr := cmd.ErrOrStderr()
	progress := datasets.WithRecordsProgress(func(completed, total int64) {
		fmt.Fprint(stderr, progressLine(tag, completed, total))
	})

	err := datasets.DownloadRecords(cmd.Context(), tag, dest, progress)

	var tagErr *datasets.UnknownTagError
	if errors.As(err, &tagErr) {
		if s := closestTag(tag, tagErr.Valid); s != "" {
			return fmt.Errorf("%w\n\nDid you mean %q?", err, s)
		}
		return err
	}
	if err != nil {
		fmt.Fprintln(stderr)
		return err
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(cmd.OutOrStdout(), "extracted %s into %s\n", tag, dest)
	return nil
}

// progressLine - Fortschrittszeile; ohne bekannte Groesse nur die geladenen Bytes
func progressLine(tag string, completed, total int64) string {
	if total < 0 {
		return fmt.Sprintf("\rdownloading %s: %s", tag, humanBytes(completed))
	}
	return fmt.Sprintf("\rdownloading %s: %s / %s", tag, humanBytes(completed), humanBytes(total))
}

// closestTag - Tag mit der kleinsten Editierdistanz, sofern sie hoechstens
// die halbe Laenge des Tags betraegt
func closestTag(tag string, tags []string) string {
	var closest string
	score := math.MaxInt
	for _, t := range tags {
		if d := levenshtein.ComputeDistance(tag, t); d < score {
			score = d
			closest = t
		}
	}

	if score > len(closest)/2 {
		return ""
	}
	return closest
}

// TagsHandler - Listet alle bekannten Tags mit ihrer Drive-ID
func TagsHandler(cmd *cobra.Command, _ []string) error {
	var data [][]string
	for _, tag := range datasets.Tags() {
		id, _ := datasets.DriveID(tag)
		data = append(data, []string{tag, id})
	}

	table := newTable(cmd.OutOrStdout(), "TAG", "DRIVE ID")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// newDownloadCmd - Erstellt den download Command
func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download TAG [DEST]",
		Short: "Download and extract pre-packaged records",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  DownloadHandler,
	}
}

// newTagsCmd - Erstellt den tags Command
func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags known to download",
		Args:  cobra.NoArgs,
		RunE:  TagsHandler,
	}
}
