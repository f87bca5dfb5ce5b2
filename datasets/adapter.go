package datasets

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/segprep/segprep/envconfig"
	"github.com/segprep/segprep/logutil"
	"github.com/segprep/segprep/pipeline"
	"github.com/segprep/segprep/types/tensor"
)

var (
	// ErrIndexOutOfRange wird ausgegeben wenn NumExamples mehr Beispiele meldet als Raw liefert
	ErrIndexOutOfRange = errors.New("example index out of range")

	// ErrInvalidShape wird ausgegeben wenn ein Bild weder 2 noch 3 Achsen hat
	ErrInvalidShape = errors.New("invalid image shape")
)

// Example ist ein Rohbeispiel, das nur das jeweilige Dataset interpretieren kann
type Example = any

// Dataset ist die Quelle, die ToPipeline in eine Pipeline verwandelt
type Dataset interface {
	NumExamples(dt DataType) int
	Raw() map[DataType][]Example
	ParseExample(ex Example) (image, mask tensor.Tensor, err error)
	NumClasses() int
}

// Element ist die Ausgabe des Generators vor der Umformung
type Element struct {
	Image      tensor.Tensor
	Mask       tensor.Tensor
	NumClasses int64
	Shape      [3]int64
}

// Sample ist ein umgeformtes Element: Image mit Form Shape, Labels mit [h, w]
type Sample struct {
	Image      tensor.Tensor
	Labels     tensor.Tensor
	NumClasses int64
}

type adapterConfig struct {
	randomize   bool
	rng         *rand.Rand
	parallelism int
}

// AdapterOption konfiguriert ToPipeline
type AdapterOption func(*adapterConfig)

// WithRandomize legt fest, ob jeder Durchlauf eine neue Permutation verwendet
func WithRandomize(randomize bool) AdapterOption {
	return func(c *adapterConfig) { c.randomize = randomize }
}

// WithAdapterRand setzt die Zufallsquelle der Permutationen.
// r darf nicht von mehreren Durchlaeufen gleichzeitig benutzt werden.
func WithAdapterRand(r *rand.Rand) AdapterOption {
	return func(c *adapterConfig) { c.rng = r }
}

// WithParallelism setzt die Anzahl paralleler Umformungen
func WithParallelism(n int) AdapterOption {
	return func(c *adapterConfig) { c.parallelism = n }
}

// Generator gibt die neu startbare Quelle der Elemente von dt zurueck.
// Jeder Start ermittelt NumExamples neu und zieht bei randomize eine neue
// Permutation der Indizes, sonst laeuft er aufsteigend.
func Generator(ds Dataset, dt DataType, randomize bool, rng *rand.Rand) pipeline.Source[Element] {
	return func(ctx context.Context) iter.Seq2[Element, error] {
		return func(yield func(Element, error) bool) {
			n := ds.NumExamples(dt)

			var indexes []int
			switch {
			case randomize && rng != nil:
				indexes = rng.Perm(n)
			case randomize:
				indexes = rand.Perm(n)
			default:
				indexes = make([]int, n)
				for i := range indexes {
					indexes[i] = i
				}
			}

			data := ds.Raw()[dt]
			numClasses := int64(ds.NumClasses())
			for _, idx := range indexes {
				if idx >= len(data) {
					yield(Element{}, fmt.Errorf("%w: %d of %d %s examples", ErrIndexOutOfRange, idx, len(data), dt))
					return
				}

				logutil.Trace("parse example", "type", dt, "index", idx)
				e, err := parseElement(ds, data[idx], numClasses)
				if !yield(e, err) || err != nil {
					return
				}
			}
		}
	}
}

func parseElement(ds Dataset, ex Example, numClasses int64) (Element, error) {
	image, mask, err := ds.ParseExample(ex)
	if err != nil {
		return Element{}, err
	}

	switch image.Rank() {
	case 2:
		image = image.ExpandDims()
	case 3:
	default:
		return Element{}, fmt.Errorf("%w: %v", ErrInvalidShape, image.Shape)
	}

	return Element{
		Image:      image,
		Mask:       mask,
		NumClasses: numClasses,
		Shape:      [3]int64{int64(image.Shape[0]), int64(image.Shape[1]), int64(image.Shape[2])},
	}, nil
}

// reshape formt das Bild auf Shape und die Maske auf die ersten beiden Achsen um
func reshape(_ context.Context, e Element) (Sample, error) {
	h, w, c := int(e.Shape[0]), int(e.Shape[1]), int(e.Shape[2])

	image, err := e.Image.Reshape(h, w, c)
	if err != nil {
		return Sample{}, fmt.Errorf("reshape image: %w", err)
	}

	labels, err := e.Mask.Reshape(h, w)
	if err != nil {
		return Sample{}, fmt.Errorf("reshape labels: %w", err)
	}

	return Sample{Image: image, Labels: labels, NumClasses: e.NumClasses}, nil
}

// ToPipeline verbindet ds mit einer Pipeline fuer dt. Die Pipeline ist lazy,
// startet bei jedem Durchlauf neu und formt die Elemente parallel um.
func ToPipeline(ds Dataset, dt DataType, opts ...AdapterOption) *pipeline.Pipeline[Sample] {
	c := adapterConfig{
		randomize:   true,
		parallelism: int(envconfig.NumParallel()),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return pipeline.Map(pipeline.FromGenerator(Generator(ds, dt, c.randomize, c.rng)), reshape, max(c.parallelism, 1))
}
