// cmd_decode.go - decode Command
// Hauptfunktionen: DecodeHandler, newDecodeCmd
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/segprep/segprep/datasets"
	"github.com/segprep/segprep/vision"
)

// DecodeHandler - Wandelt alle Label-Bilder in Klassenmasken (Grau-PNG) um
func DecodeHandler(cmd *cobra.Command, args []string) error {
	out, err := cmd.Flags().GetString("out")
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

	extensions, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}

	pairs, err := datasets.PairsFromDirs(args[0], args[1], extensions)
	if err != nil {
		return err
	}

	if same, err := sameDir(out, args[1]); err != nil {
		return err
	} else if same {
		return fmt.Errorf("output directory %s must differ from the labels directory", out)
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	written := make(map[string]string, len(pairs))
	var n int
	for li, err := range datasets.ImageGenerator(pairs, colorMap)() {
		if err != nil {
			return err
		}

		if err := cmd.Context().Err(); err != nil {
			return err
		}

		dest := filepath.Join(out, maskName(li.Pair.Label))
		if prev, ok := written[dest]; ok {
			return fmt.Errorf("labels %s and %s both map to mask %s", prev, li.Pair.Label, dest)
		}
		written[dest] = li.Pair.Label

		if err := writeMask(dest, li.Labels); err != nil {
			return err
		}

		slog.Debug("wrote mask", "label", li.Pair.Label, "path", dest)
		n++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "decoded %d masks into %s\n", n, out)
	return nil
}

// maskName - Name der Maske zu einem Label. Nicht-PNG-Labels behalten ihre
// Endung (x.gif -> x.gif.png), damit x.gif und x.png nicht kollidieren.
func maskName(label string) string {
	base := filepath.Base(label)
	ext := vision.FormatPNG.Extension()
	if strings.EqualFold(filepath.Ext(base), ext) {
		return base[:len(base)-len(ext)] + ext
	}
	return base + ext
}

// sameDir - true wenn a und b auf dasselbe Verzeichnis zeigen
func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	fa, err := os.Stat(absA)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	fb, err := os.Stat(absB)
	if err != nil {
		return false, err
	}
	return os.SameFile(fa, fb), nil
}

func writeMask(path string, m *datasets.Mask) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := vision.EncodeGray(f, m.ToTensor().Data, m.Width, m.Height); err != nil {
		return err
	}
	return f.Close()
}

// newDecodeCmd - Erstellt den decode Command
func newDecodeCmd() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode IMAGES LABELS",
		Short: "Convert color coded label images into class index masks",
		Args:  cobra.ExactArgs(2),
		RunE:  DecodeHandler,
	}

	decodeCmd.Flags().String("out", "", "Directory the masks are written to")
	decodeCmd.Flags().String("colormap", "voc", `Color map: "voc", "binary" or a JSON file`)
	decodeCmd.Flags().StringSlice("ext", datasets.DefaultExtensions, "File extensions to include")
	decodeCmd.MarkFlagRequired("out") //nolint:errcheck

	return decodeCmd
}
