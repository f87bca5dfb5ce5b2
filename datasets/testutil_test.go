package datasets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG schreibt ein Bild aus einer Liste von Pixelfarben (zeilenweise)
func writePNG(t *testing.T, path string, w, h int, pix []color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range pix {
		img.SetNRGBA(i%w, i/w, c)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// writeSolidPNG schreibt ein einfarbiges Bild
func writeSolidPNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()

	pix := make([]color.NRGBA, w*h)
	for i := range pix {
		pix[i] = c
	}
	writePNG(t, path, w, h, pix)
}

// writePairs legt n Bild/Label-Paare in zwei Unterverzeichnissen an
func writePairs(t *testing.T, n int) (imagesDir, labelsDir string) {
	t.Helper()

	root := t.TempDir()
	imagesDir = filepath.Join(root, "images")
	labelsDir = filepath.Join(root, "labels")
	for _, dir := range []string{imagesDir, labelsDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	for i := range n {
		name := string(rune('a'+i)) + ".png"
		writeSolidPNG(t, filepath.Join(imagesDir, name), 4, 2, color.NRGBA{uint8(i), 10, 20, 255})
		writeSolidPNG(t, filepath.Join(labelsDir, name), 4, 2, color.NRGBA{255, 255, 255, 255})
	}
	return imagesDir, labelsDir
}
