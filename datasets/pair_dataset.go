package datasets

import (
	"fmt"

	"github.com/segprep/segprep/types/tensor"
)

// PairDataset ist ein Dataset ueber Bild/Label-Paare auf der Festplatte
type PairDataset struct {
	split    Split[Pair]
	colorMap ColorMap
}

// NewPairDataset erstellt ein Dataset aus einem fertigen Split
func NewPairDataset(split Split[Pair], colorMap ColorMap) *PairDataset {
	return &PairDataset{split: split, colorMap: colorMap}
}

// PairDatasetFromDirs paart und teilt die Dateien aus zwei Verzeichnissen
func PairDatasetFromDirs(imagesDir, labelsDir string, extensions []string, colorMap ColorMap, opts ...SplitOption) (*PairDataset, error) {
	split, err := SplitFromDirs(imagesDir, labelsDir, extensions, opts...)
	if err != nil {
		return nil, err
	}
	return NewPairDataset(split, colorMap), nil
}

func (d *PairDataset) NumExamples(dt DataType) int {
	return len(d.split[dt])
}

func (d *PairDataset) Raw() map[DataType][]Example {
	raw := make(map[DataType][]Example, len(d.split))
	for dt, pairs := range d.split {
		examples := make([]Example, len(pairs))
		for i, p := range pairs {
			examples[i] = p
		}
		raw[dt] = examples
	}
	return raw
}

func (d *PairDataset) ParseExample(ex Example) (image, mask tensor.Tensor, err error) {
	p, ok := ex.(Pair)
	if !ok {
		return tensor.Tensor{}, tensor.Tensor{}, fmt.Errorf("unexpected example type %T", ex)
	}

	li, err := decodePair(p, d.colorMap)
	if err != nil {
		return tensor.Tensor{}, tensor.Tensor{}, err
	}
	return li.Image.Tensor(), li.Labels.ToTensor(), nil
}

func (d *PairDataset) NumClasses() int {
	return d.colorMap.NumClasses()
}
