package datasets

import (
	"errors"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segprep/segprep/vision"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGetFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "B.PNG", "c.jpg", "d.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e.png"), 0o755))
	touch(t, filepath.Join(dir, "e.png", "f.png"))

	cases := []struct {
		name       string
		extensions []string
		want       []string
	}{
		{"Standard", nil, []string{"B.PNG", "a.png"}},
		{"Mit Punkt", []string{".jpg"}, []string{"c.jpg"}},
		{"Mehrere", []string{"JPG", "png"}, []string{"B.PNG", "a.png", "c.jpg"}},
		{"Keine Treffer", []string{"gif"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := GetFiles(dir, tc.extensions...)
			require.NoError(t, err)

			var names []string
			for _, f := range files {
				assert.Equal(t, dir, filepath.Dir(f))
				names = append(names, filepath.Base(f))
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestGetFilesUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))

	_, err := GetFiles(dir, "png", "txt")
	assert.ErrorIs(t, err, vision.ErrUnknownFormat)
	assert.ErrorContains(t, err, `extension "txt"`)
}

func TestGetFilesMissingDir(t *testing.T) {
	_, err := GetFiles(filepath.Join(t.TempDir(), "fehlt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("erwartet fs.ErrNotExist, erhalten: %v", err)
	}
}

func TestPairsFromDirs(t *testing.T) {
	imagesDir, labelsDir := writePairs(t, 4)

	pairs, err := PairsFromDirs(imagesDir, labelsDir, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 4)

	for i, p := range pairs {
		name := string(rune('a'+i)) + ".png"
		assert.Equal(t, filepath.Join(imagesDir, name), p.Image)
		assert.Equal(t, filepath.Join(labelsDir, name), p.Label)
	}
}

func TestPairsFromDirsTruncates(t *testing.T) {
	imagesDir, labelsDir := writePairs(t, 3)
	require.NoError(t, os.Remove(filepath.Join(labelsDir, "b.png")))

	pairs, err := PairsFromDirs(imagesDir, labelsDir, nil)
	require.NoError(t, err)

	// Zuordnung nur ueber die Position, Namen werden nicht verglichen
	assert.Equal(t, []Pair{
		{Image: filepath.Join(imagesDir, "a.png"), Label: filepath.Join(labelsDir, "a.png")},
		{Image: filepath.Join(imagesDir, "b.png"), Label: filepath.Join(labelsDir, "c.png")},
	}, pairs)
}

func TestSplitFromDirs(t *testing.T) {
	imagesDir, labelsDir := writePairs(t, 10)

	split, err := SplitFromDirs(imagesDir, labelsDir, []string{"png"}, WithShuffle(false))
	require.NoError(t, err)

	assert.Len(t, split[TypeTrain], 8)
	assert.Len(t, split[TypeVal], 1)
	assert.Len(t, split[TypeTest], 1)
	assert.Equal(t, filepath.Join(imagesDir, "i.png"), split[TypeVal][0].Image)
	assert.Equal(t, filepath.Join(labelsDir, "j.png"), split[TypeTest][0].Label)
}

func TestSplitFromDirsMissingLabels(t *testing.T) {
	imagesDir, _ := writePairs(t, 2)

	_, err := SplitFromDirs(imagesDir, filepath.Join(t.TempDir(), "fehlt"), nil)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPairDatasetFromDirs(t *testing.T) {
	imagesDir, labelsDir := writePairs(t, 10)
	writeSolidPNG(t, filepath.Join(labelsDir, "a.png"), 4, 2, color.NRGBA{0, 0, 0, 255})

	ds, err := PairDatasetFromDirs(imagesDir, labelsDir, nil, BinaryColorMap(), WithShuffle(false))
	require.NoError(t, err)

	assert.Equal(t, 8, ds.NumExamples(TypeTrain))
	assert.Equal(t, 1, ds.NumExamples(TypeTest))
	assert.Equal(t, 2, ds.NumClasses())

	raw := ds.Raw()
	require.Len(t, raw[TypeTrain], 8)

	image, mask, err := ds.ParseExample(raw[TypeTrain][0])
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 3}, image.Shape)
	assert.Equal(t, []int{2, 4}, mask.Shape)
	assert.Equal(t, make([]uint8, 8), mask.Data, "schwarz ist Klasse 0")

	_, mask, err = ds.ParseExample(raw[TypeTrain][1])
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 1, 1, 1, 1, 1, 1}, mask.Data, "weiss ist Klasse 1")

	_, _, err = ds.ParseExample("kein paar")
	assert.ErrorContains(t, err, "unexpected example type string")
}
