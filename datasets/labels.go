package datasets

import (
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/segprep/segprep/types/tensor"
	"github.com/segprep/segprep/vision"
)

// Mask ist eine einkanalige Klassenmaske. Pix enthaelt pro Pixel den
// Mittelwert der drei ersetzten Farbkanaele.
type Mask struct {
	Width, Height int
	Pix           []float64
}

// At gibt den Wert an Position (x, y) zurueck
func (m *Mask) At(x, y int) float64 {
	return m.Pix[y*m.Width+x]
}

// ToTensor rundet die Maske auf uint8-Klassenindizes mit Form [h, w]
func (m *Mask) ToTensor() tensor.Tensor {
	t := tensor.New(m.Height, m.Width)
	for i, v := range m.Pix {
		t.Data[i] = uint8(min(max(math.Round(v), 0), math.MaxUint8))
	}
	return t
}

// LabeledImage ist ein dekodiertes Eingabebild mit seiner Klassenmaske
type LabeledImage struct {
	Pair   Pair
	Image  *vision.ImageInput
	Labels *Mask
}

// DecodeLabels wandelt ein farbcodiertes Label-Bild in eine Klassenmaske um.
//
// Jeder Pixel, dessen RGB-Wert exakt einer Farbe aus colorMap entspricht, wird
// zu (v, v, v) mit dem Klassenindex v. Danach wird pro Pixel der Mittelwert der
// drei Kanaele gebildet. Pixel ohne passende Farbe behalten daher den
// Mittelwert ihrer Originalfarbe.
func DecodeLabels(img *vision.ImageInput, colorMap ColorMap) *Mask {
	labels := img.RGB()
	idx := make([]float64, len(labels))
	for i, v := range labels {
		idx[i] = float64(v)
	}

	for i := 0; i+2 < len(labels); i += 3 {
		c := Color{labels[i], labels[i+1], labels[i+2]}
		if v, ok := colorMap[c]; ok {
			idx[i], idx[i+1], idx[i+2] = float64(v), float64(v), float64(v)
		}
	}

	mask := &Mask{
		Width:  img.Width,
		Height: img.Height,
		Pix:    make([]float64, img.Width*img.Height),
	}
	for i := range mask.Pix {
		mask.Pix[i] = stat.Mean(idx[i*3:i*3+3], nil)
	}
	return mask
}

// decodePair laedt zuerst das Label und danach das Eingabebild
func decodePair(p Pair, colorMap ColorMap) (LabeledImage, error) {
	label, err := vision.LoadImage(p.Label)
	if err != nil {
		return LabeledImage{}, fmt.Errorf("load label %s: %w", p.Label, err)
	}

	img, err := vision.LoadImage(p.Image)
	if err != nil {
		return LabeledImage{}, fmt.Errorf("load image %s: %w", p.Image, err)
	}

	return LabeledImage{Pair: p, Image: img, Labels: DecodeLabels(label, colorMap)}, nil
}

// ImageGenerator gibt eine Funktion zurueck, die bei jedem Aufruf eine neue
// Sequenz ueber data liefert. Jedes Paar wird erst dekodiert, wenn die
// Sequenz es anfordert. Ein Fehler wird ausgegeben und beendet die Sequenz.
func ImageGenerator(data []Pair, colorMap ColorMap) func() iter.Seq2[LabeledImage, error] {
	return func() iter.Seq2[LabeledImage, error] {
		return func(yield func(LabeledImage, error) bool) {
			for _, p := range data {
				li, err := decodePair(p, colorMap)
				if err != nil {
					yield(LabeledImage{}, err)
					return
				}
				if !yield(li, nil) {
					return
				}
			}
		}
	}
}
