package datasets

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segprep/segprep/logutil"
	"github.com/segprep/segprep/pipeline"
	"github.com/segprep/segprep/types/tensor"
)

// fakeDataset liefert Beispiele, deren Bild mit dem Beispielindex gefuellt ist
type fakeDataset struct {
	n        int
	reported int
	rank3    bool
	badMask  bool
	failAt   int
	parsed   atomic.Int32
}

func (d *fakeDataset) NumExamples(DataType) int {
	if d.reported > 0 {
		return d.reported
	}
	return d.n
}

func (d *fakeDataset) Raw() map[DataType][]Example {
	examples := make([]Example, d.n)
	for i := range examples {
		examples[i] = i
	}
	return map[DataType][]Example{TypeTrain: examples}
}

func (d *fakeDataset) ParseExample(ex Example) (image, mask tensor.Tensor, err error) {
	d.parsed.Add(1)
	i := ex.(int)
	if d.failAt > 0 && i == d.failAt {
		return tensor.Tensor{}, tensor.Tensor{}, errors.New("kaputtes beispiel")
	}

	image = tensor.New(2, 3)
	if d.rank3 {
		image = tensor.New(2, 3, 3)
	}
	for j := range image.Data {
		image.Data[j] = uint8(i)
	}

	mask = tensor.New(2, 3)
	if d.badMask {
		mask = tensor.New(3, 3)
	}
	return image, mask, nil
}

func (d *fakeDataset) NumClasses() int { return 21 }

func indexesOf(samples []Sample) []int {
	idx := make([]int, len(samples))
	for i, s := range samples {
		idx[i] = int(s.Image.Data[0])
	}
	return idx
}

func TestToPipelineOrdered(t *testing.T) {
	ds := &fakeDataset{n: 10}

	samples, err := pipeline.Collect(t.Context(), ToPipeline(ds, TypeTrain, WithRandomize(false), WithParallelism(3)))
	require.NoError(t, err)
	require.Len(t, samples, 10)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, indexesOf(samples))
	for _, s := range samples {
		assert.Equal(t, []int{2, 3, 1}, s.Image.Shape)
		assert.Equal(t, []int{2, 3}, s.Labels.Shape)
		assert.EqualValues(t, 21, s.NumClasses)
	}
}

func TestToPipelineRandomizedPasses(t *testing.T) {
	ds := &fakeDataset{n: 50}
	p := ToPipeline(ds, TypeTrain)

	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}

	var passes [][]int
	for range 2 {
		samples, err := pipeline.Collect(t.Context(), p)
		require.NoError(t, err)

		idx := indexesOf(samples)
		passes = append(passes, slices.Clone(idx))
		slices.Sort(idx)
		assert.Equal(t, want, idx, "jeder Durchlauf ist eine Permutation aller Indizes")
	}

	assert.NotEqual(t, passes[0], passes[1], "zwei Durchlaeufe sollten unterschiedlich gemischt sein")
	assert.EqualValues(t, 100, ds.parsed.Load())
}

func TestGeneratorSeeded(t *testing.T) {
	ds := &fakeDataset{n: 20}

	collect := func(seed uint64) []int {
		src := Generator(ds, TypeTrain, true, rand.New(rand.NewPCG(seed, seed)))
		var idx []int
		for e, err := range src(t.Context()) {
			require.NoError(t, err)
			idx = append(idx, int(e.Image.Data[0]))
		}
		return idx
	}

	assert.Equal(t, collect(7), collect(7))
	assert.Equal(t, rand.New(rand.NewPCG(7, 7)).Perm(20), collect(7))
}

func TestGeneratorElementShape(t *testing.T) {
	cases := []struct {
		name  string
		rank3 bool
		want  [3]int64
		image []int
	}{
		{"Graubild", false, [3]int64{2, 3, 1}, []int{2, 3, 1}},
		{"Farbbild", true, [3]int64{2, 3, 3}, []int{2, 3, 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ds := &fakeDataset{n: 1, rank3: tc.rank3}
			for e, err := range Generator(ds, TypeTrain, false, nil)(t.Context()) {
				require.NoError(t, err)
				assert.Equal(t, tc.want, e.Shape)
				assert.Equal(t, tc.image, e.Image.Shape)
				assert.Equal(t, []int{2, 3}, e.Mask.Shape)
				assert.EqualValues(t, 21, e.NumClasses)
			}
		})
	}
}

func TestGeneratorTracesExamples(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logutil.NewLogger(&buf, logutil.LevelTrace))
	t.Cleanup(func() { slog.SetDefault(prev) })

	for _, err := range Generator(&fakeDataset{n: 2}, TypeTrain, false, nil)(t.Context()) {
		require.NoError(t, err)
	}

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `msg="parse example"`), out)
	assert.Equal(t, 2, strings.Count(out, "level=TRACE"), out)
	assert.Contains(t, out, "index=1")
}

func TestGeneratorIndexOutOfRange(t *testing.T) {
	ds := &fakeDataset{n: 2, reported: 3}

	samples, err := pipeline.Collect(t.Context(), ToPipeline(ds, TypeTrain, WithRandomize(false)))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Len(t, samples, 2)
}

func TestGeneratorUnknownType(t *testing.T) {
	ds := &fakeDataset{n: 4}

	// Raw liefert nur train, die Anzahl kommt aber von NumExamples
	_, err := pipeline.Collect(t.Context(), ToPipeline(ds, TypeVal))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestToPipelineParseError(t *testing.T) {
	ds := &fakeDataset{n: 5, failAt: 3}

	samples, err := pipeline.Collect(t.Context(), ToPipeline(ds, TypeTrain, WithRandomize(false), WithParallelism(1)))
	assert.EqualError(t, err, "kaputtes beispiel")
	assert.Equal(t, []int{0, 1, 2}, indexesOf(samples))
}

func TestToPipelineReshapeError(t *testing.T) {
	ds := &fakeDataset{n: 1, badMask: true}

	_, err := pipeline.Collect(t.Context(), ToPipeline(ds, TypeTrain))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.ErrorContains(t, err, "reshape labels")
}

func TestToPipelineCancelled(t *testing.T) {
	ds := &fakeDataset{n: 10}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := pipeline.Collect(ctx, ToPipeline(ds, TypeTrain))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToPipelineDefaultParallelism(t *testing.T) {
	t.Setenv("SEGPREP_NUM_PARALLEL", "0")

	samples, err := pipeline.Collect(t.Context(), ToPipeline(&fakeDataset{n: 3}, TypeTrain, WithRandomize(false)))
	require.NoError(t, err)
	assert.Len(t, samples, 3)
}

func TestToPipelinePairDataset(t *testing.T) {
	imagesDir, labelsDir := writePairs(t, 5)

	ds, err := PairDatasetFromDirs(imagesDir, labelsDir, nil, BinaryColorMap(), WithShuffle(false), WithTrainSplit(1))
	require.NoError(t, err)

	samples, err := pipeline.Collect(t.Context(), ToPipeline(ds, TypeTrain, WithRandomize(false)))
	require.NoError(t, err)
	require.Len(t, samples, 5)

	for i, s := range samples {
		assert.Equal(t, []int{2, 4, 3}, s.Image.Shape)
		assert.Equal(t, []uint8{uint8(i), 10, 20}, s.Image.Data[:3])
		assert.Equal(t, []uint8{1, 1, 1, 1, 1, 1, 1, 1}, s.Labels.Data)
		assert.EqualValues(t, 2, s.NumClasses)
	}
}
