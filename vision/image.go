// MODUL: image
// ZWECK: Bild- und Label-Lade-Funktionen fuer Segmentierungs-Datensaetze
// INPUT: Dateipfad, Bytes oder io.Reader
// OUTPUT: ImageInput Struktur mit dekodiertem Bild, Kanal-Arrays, Tensoren
// NEBENEFFEKTE: Dateisystem-Lesezugriff bei LoadImage
// ABHAENGIGKEITEN: golang.org/x/image/draw (extern), image/jpeg, image/png, image/gif
// HINWEISE: Bilder werden als NRGBA gehalten, damit Label-Farben bei Alpha < 255
//           nicht vormultipliziert werden. WebP benoetigt x/image/webp.

package vision

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	// Standard-Decoder registrieren
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/segprep/segprep/types/tensor"
)

// ImageInput enthaelt ein dekodiertes Bild mit Metadaten
type ImageInput struct {
	Image  *image.NRGBA
	Width  int
	Height int
	Format ImageFormat

	// Channels ist die Kanalzahl der Quelldatei: 1 (Grau), 3 (RGB) oder 4 (RGBA)
	Channels int
}

// LoadImage laedt ein Bild von einem Dateipfad
func LoadImage(path string) (*ImageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("datei lesen fehlgeschlagen: %w", err)
	}
	return LoadImageFromBytes(data)
}

// LoadImageFromBytes dekodiert ein Bild aus Byte-Daten
func LoadImageFromBytes(data []byte) (*ImageInput, error) {
	format := DetectFormat(data)
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	return decodeWithFormat(bytes.NewReader(data), format)
}

// DecodeImage dekodiert ein Bild aus einem io.Reader
func DecodeImage(reader io.Reader) (*ImageInput, error) {
	// Erst Daten puffern fuer Format-Erkennung
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("daten lesen fehlgeschlagen: %w", err)
	}
	return LoadImageFromBytes(data)
}

// decodeWithFormat dekodiert und konvertiert zu NRGBA
func decodeWithFormat(reader io.Reader, format ImageFormat) (*ImageInput, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("bild dekodieren fehlgeschlagen: %w", err)
	}

	nrgba := toNRGBA(img)
	bounds := nrgba.Bounds()

	return &ImageInput{
		Image:    nrgba,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		Channels: channelsOf(img),
	}, nil
}

// channelsOf leitet die Kanalzahl aus dem Farbmodell des Decoders ab.
// PNG ohne Alpha dekodiert zu *image.RGBA, PNG mit Alpha zu *image.NRGBA.
func channelsOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.NRGBA, *image.NRGBA64:
		return 4
	default:
		return 3
	}
}

// toNRGBA konvertiert ein beliebiges image.Image zu *image.NRGBA mit Ursprung (0,0)
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}

	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	return nrgba
}

// Pixels gibt die Pixel zeilenweise mit n Kanaeln (1, 3 oder 4) zurueck.
// Bei n == 1 wird der Rot-Kanal verwendet, was fuer Graubilder dem Grauwert entspricht.
func (img *ImageInput) Pixels(n int) ([]uint8, error) {
	if n != 1 && n != 3 && n != 4 {
		return nil, fmt.Errorf("ungueltige kanalzahl: %d", n)
	}

	out := make([]uint8, 0, img.Width*img.Height*n)
	for y := range img.Height {
		row := img.Image.Pix[y*img.Image.Stride : y*img.Image.Stride+img.Width*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x:x+n]...)
		}
	}
	return out, nil
}

// RGB gibt die drei Farbkanaele ohne Alpha zurueck
func (img *ImageInput) RGB() []uint8 {
	pix, _ := img.Pixels(3)
	return pix
}

// Tensor gibt das Bild mit seiner Quell-Kanalzahl zurueck.
// Graubilder haben die Form [h, w], alle anderen [h, w, c].
func (img *ImageInput) Tensor() tensor.Tensor {
	channels := img.Channels
	if channels == 0 {
		channels = 3
	}

	pix, _ := img.Pixels(channels)
	shape := []int{img.Height, img.Width, channels}
	if channels == 1 {
		shape = shape[:2]
	}

	t, _ := tensor.FromData(pix, shape...)
	return t
}

// EncodeGray schreibt ein einkanaliges Array als 8-Bit Grau-PNG
func EncodeGray(w io.Writer, pix []uint8, width, height int) error {
	if len(pix) != width*height {
		return fmt.Errorf("ungueltige groesse: %d pixel fuer %dx%d", len(pix), width, height)
	}

	gray := &image.Gray{Pix: pix, Stride: width, Rect: image.Rect(0, 0, width, height)}
	return png.Encode(w, gray)
}
