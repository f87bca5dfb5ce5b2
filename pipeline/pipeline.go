// Package pipeline - Lazy, neu startbare Datenpipelines
//
// Eine Pipeline besteht aus einer Quelle (Source) und beliebig vielen
// zustandslosen Stufen. Jeder Aufruf von All startet die Quelle neu, so dass
// z.B. jede Epoche eine frische Permutation der Beispiele sieht.
//
// Hauptfunktionen:
// - FromGenerator/FromSlice: Erzeugt eine Pipeline aus einer Quelle
// - Map: Element-weise Stufe mit begrenzter Parallelitaet
// - Take/Collect/ForEach: Begrenzen und Konsumieren
package pipeline

import (
	"context"
	"iter"
)

// Source liefert bei jedem Aufruf eine neue Sequenz von Elementen
type Source[T any] func(ctx context.Context) iter.Seq2[T, error]

// Pipeline ist eine lazy Sequenz von Elementen des Typs T
type Pipeline[T any] struct {
	src Source[T]
}

// FromGenerator erstellt eine Pipeline aus einer neu startbaren Quelle
func FromGenerator[T any](src Source[T]) *Pipeline[T] {
	return &Pipeline[T]{src: src}
}

// FromSlice erstellt eine Pipeline, die die Elemente von s in Reihenfolge liefert
func FromSlice[T any](s []T) *Pipeline[T] {
	return FromGenerator(func(context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			for _, v := range s {
				if !yield(v, nil) {
					return
				}
			}
		}
	})
}

// All startet die Pipeline neu und liefert ihre Elemente.
// Nach dem ersten Fehler endet die Sequenz.
func (p *Pipeline[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for v, err := range p.src(ctx) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Take begrenzt die Pipeline auf die ersten n Elemente
func (p *Pipeline[T]) Take(n int) *Pipeline[T] {
	return FromGenerator(func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			if n <= 0 {
				return
			}
			i := 0
			for v, err := range p.All(ctx) {
				if !yield(v, err) || err != nil {
					return
				}
				if i++; i >= n {
					return
				}
			}
		}
	})
}

// Collect liest alle Elemente in einen Slice
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	var out []T
	for v, err := range p.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ForEach ruft fn fuer jedes Element auf und bricht beim ersten Fehler ab
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(T) error) error {
	for v, err := range p.All(ctx) {
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
