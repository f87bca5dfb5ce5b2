package datasets

import (
	"math"
	"math/rand/v2"
)

const (
	DefaultTrainSplit = 0.8
	DefaultValSplit   = 0.5

	// DefaultTwoWaySplit ist der Trainingsanteil von SplitFromList
	DefaultTwoWaySplit = 0.9
)

// defaultRandom liefert immer denselben Wert, damit die Standard-Mischung
// zwischen Laeufen reproduzierbar bleibt
func defaultRandom() float64 { return 0.2 }

// Split ordnet jedem DataType seine Eintraege zu
type Split[T any] map[DataType][]T

type splitConfig struct {
	train   float64
	val     float64
	shuffle bool
	random  func() float64
}

// SplitOption konfiguriert TrainTestVal und GetSplit
type SplitOption func(*splitConfig)

// WithTrainSplit setzt den Anteil der Trainingsdaten an der Gesamtliste.
// Werte ausserhalb von [0, 1] werden auf 0 bzw. die ganze Liste begrenzt.
func WithTrainSplit(f float64) SplitOption {
	return func(c *splitConfig) { c.train = f }
}

// WithValSplit setzt den Anteil der Validierungsdaten am Rest nach train.
// Werte ausserhalb von [0, 1] werden wie bei WithTrainSplit begrenzt.
func WithValSplit(f float64) SplitOption {
	return func(c *splitConfig) { c.val = f }
}

// WithShuffle schaltet das Mischen vor dem Aufteilen ein oder aus
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) { c.shuffle = shuffle }
}

// WithRandom setzt die Zufallsquelle der Mischung. fn muss Werte in [0, 1) liefern.
func WithRandom(fn func() float64) SplitOption {
	return func(c *splitConfig) {
		if fn != nil {
			c.random = fn
		}
	}
}

// WithRand mischt mit r.Float64
func WithRand(r *rand.Rand) SplitOption {
	return func(c *splitConfig) {
		if r != nil {
			c.random = r.Float64
		}
	}
}

func newSplitConfig(opts []SplitOption) splitConfig {
	c := splitConfig{
		train:   DefaultTrainSplit,
		val:     DefaultValSplit,
		shuffle: true,
		random:  defaultRandom,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// TrainTestVal teilt l in Trainings-, Test- und Validierungsdaten auf.
//
// Mit aktivem Mischen wird l selbst umsortiert. Die Schnittpunkte werden pro
// Segment gerundet: zuerst round(train*len(l)) fuer train, danach
// round(val*len(rest)) fuer val, der Rest ist test.
func TrainTestVal[T any](l []T, opts ...SplitOption) (train, test, val []T) {
	c := newSplitConfig(opts)
	if c.shuffle {
		shuffle(l, c.random)
	}

	trainCut := cut(c.train, len(l))
	train, rest := l[:trainCut], l[trainCut:]

	valCut := cut(c.val, len(rest))
	val, test = rest[:valCut], rest[valCut:]
	return train, test, val
}

// GetSplit verpackt das Ergebnis von TrainTestVal in einen Split
func GetSplit[T any](l []T, opts ...SplitOption) Split[T] {
	train, test, val := TrainTestVal(l, opts...)
	return Split[T]{
		TypeTrain: train,
		TypeTest:  test,
		TypeVal:   val,
	}
}

// SplitFromList teilt l ohne Mischen in train und val auf
func SplitFromList[T any](l []T, split float64) (train, val []T) {
	n := cut(split, len(l))
	return l[:n], l[n:]
}

// cut rundet f*n zur naechsten Ganzzahl (bei .5 zur geraden) und begrenzt auf [0, n]
func cut(f float64, n int) int {
	return min(max(int(math.RoundToEven(f*float64(n))), 0), n)
}

// shuffle mischt l in place. Fuer i von hinten wird mit dem Index
// int(random()*(i+1)) getauscht.
func shuffle[T any](l []T, random func() float64) {
	for i := len(l) - 1; i > 0; i-- {
		j := int(random() * float64(i+1))
		l[i], l[j] = l[j], l[i]
	}
}
