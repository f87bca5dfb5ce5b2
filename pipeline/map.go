// Package pipeline - Parallele Map-Stufe
//
// Map verarbeitet Elemente in Fenstern von 2*parallelism Elementen. Innerhalb
// eines Fensters laufen hoechstens parallelism Aufrufe gleichzeitig; die
// Ergebnisse werden in Eingabe-Reihenfolge ausgegeben.
package pipeline

import (
	"context"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// MapFunc transformiert ein Element. Sie muss zustandslos sein, da sie
// nebenlaeufig aufgerufen wird.
type MapFunc[T, U any] func(ctx context.Context, in T) (U, error)

// Map haengt eine element-weise Stufe an die Pipeline an
func Map[T, U any](p *Pipeline[T], fn MapFunc[T, U], parallelism int) *Pipeline[U] {
	parallelism = max(parallelism, 1)
	window := 2 * parallelism

	return FromGenerator(func(ctx context.Context) iter.Seq2[U, error] {
		return func(yield func(U, error) bool) {
			var zero U
			sem := semaphore.NewWeighted(int64(parallelism))
			batch := make([]T, 0, window)

			// flush verarbeitet das aktuelle Fenster und gibt false zurueck,
			// wenn die Sequenz beendet werden muss
			flush := func() bool {
				out, err := mapWindow(ctx, sem, batch, fn)
				batch = batch[:0]
				if err != nil {
					slog.Debug("map stage failed", "error", err)
					yield(zero, err)
					return false
				}
				for _, u := range out {
					if !yield(u, nil) {
						return false
					}
				}
				return true
			}

			for v, err := range p.All(ctx) {
				if err != nil {
					if len(batch) > 0 && !flush() {
						return
					}
					yield(zero, err)
					return
				}

				batch = append(batch, v)
				if len(batch) == window && !flush() {
					return
				}
			}

			if len(batch) > 0 {
				flush()
			}
		}
	})
}

// mapWindow ruft fn fuer alle Elemente eines Fensters parallel auf
func mapWindow[T, U any](ctx context.Context, sem *semaphore.Weighted, in []T, fn MapFunc[T, U]) ([]U, error) {
	out := make([]U, len(in))

	g, ctx := errgroup.WithContext(ctx)
	for i, v := range in {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			u, err := fn(ctx, v)
			if err != nil {
				return err
			}
			out[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
