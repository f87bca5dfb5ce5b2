package datasets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/emirpasic/gods/v2/sets/hashset"

	"github.com/segprep/segprep/vision"
)

// DefaultExtensions sind die Dateiendungen, die GetFiles ohne Angabe zulaesst
var DefaultExtensions = []string{"png"}

// Pair verbindet ein Eingabebild mit seinem Label-Bild
type Pair struct {
	Image string `json:"image"`
	Label string `json:"label"`
}

// GetFiles listet alle regulaeren Dateien in dir mit einer der Endungen auf.
// Endungen, die vision nicht dekodieren kann, sind ein Fehler.
// Unterverzeichnisse werden nicht durchsucht, das Ergebnis ist sortiert.
func GetFiles(dir string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	allowed := hashset.New[string]()
	for _, ext := range extensions {
		if err := vision.ValidateFormat(vision.FormatFromExtension(ext)); err != nil {
			return nil, fmt.Errorf("extension %q: %w", ext, err)
		}
		allowed.Add(normalizeExt(ext))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if allowed.Contains(normalizeExt(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// PairsFromDirs ordnet Bilder und Labels nach ihrer Position in der sortierten
// Liste zu. Bei ungleicher Anzahl wird auf die kuerzere Liste gekuerzt, die
// Dateinamen werden nicht verglichen.
func PairsFromDirs(imagesDir, labelsDir string, extensions []string) ([]Pair, error) {
	images, err := GetFiles(imagesDir, extensions...)
	if err != nil {
		return nil, err
	}

	labels, err := GetFiles(labelsDir, extensions...)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, min(len(images), len(labels)))
	for i := range pairs {
		pairs[i] = Pair{Image: images[i], Label: labels[i]}
	}
	return pairs, nil
}

// SplitFromDirs paart die Dateien aus imagesDir und labelsDir und teilt sie
// mit GetSplit auf
func SplitFromDirs(imagesDir, labelsDir string, extensions []string, opts ...SplitOption) (Split[Pair], error) {
	pairs, err := PairsFromDirs(imagesDir, labelsDir, extensions)
	if err != nil {
		return nil, err
	}
	return GetSplit(pairs, opts...), nil
}
