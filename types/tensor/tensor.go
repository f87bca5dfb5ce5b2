// Package tensor enthaelt ein flaches uint8-Array mit Form, wie es Bilder
// und Klassenmasken zwischen Dekodierung und Pipeline benoetigen.
package tensor

import (
	"errors"
	"fmt"
	"slices"
)

// ErrShapeMismatch wird zurueckgegeben wenn Elementanzahl und Form nicht passen
var ErrShapeMismatch = errors.New("shape mismatch")

// Tensor ist ein zeilenweise (row-major) gespeichertes n-D Array
type Tensor struct {
	Shape []int
	Data  []uint8
}

// New allokiert einen Tensor der gegebenen Form
func New(shape ...int) Tensor {
	return Tensor{
		Shape: slices.Clone(shape),
		Data:  make([]uint8, numElements(shape)),
	}
}

// FromData erstellt einen Tensor aus vorhandenen Daten ohne Kopie
func FromData(data []uint8, shape ...int) (Tensor, error) {
	if n := numElements(shape); n != len(data) {
		return Tensor{}, fmt.Errorf("%w: %d elements for shape %v (%d)", ErrShapeMismatch, len(data), shape, n)
	}
	return Tensor{Shape: slices.Clone(shape), Data: data}, nil
}

// NumElements gibt die Anzahl der Elemente laut Form zurueck
func (t Tensor) NumElements() int {
	return numElements(t.Shape)
}

// Rank gibt die Anzahl der Achsen zurueck
func (t Tensor) Rank() int {
	return len(t.Shape)
}

// Reshape gibt eine Sicht mit neuer Form auf dieselben Daten zurueck
func (t Tensor) Reshape(shape ...int) (Tensor, error) {
	return FromData(t.Data, shape...)
}

// ExpandDims haengt eine Achse der Groesse 1 an
func (t Tensor) ExpandDims() Tensor {
	return Tensor{Shape: append(slices.Clone(t.Shape), 1), Data: t.Data}
}

func (t Tensor) String() string {
	return fmt.Sprintf("Tensor(uint8, %v)", t.Shape)
}

func numElements(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
