package pipeline

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingSource(n int, starts *atomic.Int32) Source[int] {
	return func(context.Context) iter.Seq2[int, error] {
		starts.Add(1)
		return func(yield func(int, error) bool) {
			for i := range n {
				if !yield(i, nil) {
					return
				}
			}
		}
	}
}

func TestAllRestartsSource(t *testing.T) {
	var starts atomic.Int32
	p := FromGenerator(countingSource(5, &starts))

	first, err := Collect(t.Context(), p)
	require.NoError(t, err)
	second, err := Collect(t.Context(), p)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 2, starts.Load())
}

func TestMapKeepsOrder(t *testing.T) {
	in := make([]int, 50)
	for i := range in {
		in[i] = i
	}

	p := Map(FromSlice(in), func(_ context.Context, v int) (int, error) {
		// spaetere Elemente werden frueher fertig
		time.Sleep(time.Duration(50-v) * 50 * time.Microsecond)
		return v * v, nil
	}, 4)

	got, err := Collect(t.Context(), p)
	require.NoError(t, err)
	require.Len(t, got, len(in))
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestMapLimitsParallelism(t *testing.T) {
	var running, peak atomic.Int32
	in := make([]int, 40)

	p := Map(FromSlice(in), func(_ context.Context, v int) (int, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return v, nil
	}, 3)

	_, err := Collect(t.Context(), p)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestMapError(t *testing.T) {
	errBoom := errors.New("boom")

	p := Map(FromSlice([]int{1, 2, 3, 4, 5, 6, 7, 8}), func(_ context.Context, v int) (int, error) {
		if v == 7 {
			return 0, errBoom
		}
		return v, nil
	}, 2)

	got, err := Collect(t.Context(), p)
	require.ErrorIs(t, err, errBoom)
	// erstes Fenster (4 Elemente) ist vollstaendig durchgelaufen
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestMapSourceError(t *testing.T) {
	errSource := errors.New("quelle kaputt")
	src := FromGenerator(func(context.Context) iter.Seq2[int, error] {
		return func(yield func(int, error) bool) {
			if !yield(1, nil) {
				return
			}
			yield(0, errSource)
		}
	})

	got, err := Collect(t.Context(), Map(src, func(_ context.Context, v int) (int, error) {
		return v + 1, nil
	}, 8))

	require.ErrorIs(t, err, errSource)
	assert.Equal(t, []int{2}, got)
}

func TestTake(t *testing.T) {
	var starts atomic.Int32
	p := FromGenerator(countingSource(100, &starts)).Take(3)

	got, err := Collect(t.Context(), p)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	empty, err := Collect(t.Context(), FromSlice([]int{1}).Take(0))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Collect(ctx, FromSlice([]int{1, 2, 3}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForEach(t *testing.T) {
	var sum int
	err := ForEach(t.Context(), FromSlice([]int{1, 2, 3}), func(v int) error {
		sum += v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, sum)

	errStop := errors.New("stop")
	err = ForEach(t.Context(), FromSlice([]int{1, 2, 3}), func(v int) error {
		if v == 2 {
			return errStop
		}
		return nil
	})
	assert.ErrorIs(t, err, errStop)
}
