package datasets

import (
	"encoding/json"
	"fmt"
	"os"
)

// Color ist ein RGB-Tripel, das als Schluessel einer ColorMap dient
type Color struct {
	R, G, B uint8
}

// ColorMap bildet Label-Farben auf Klassenindizes ab
type ColorMap map[Color]int

// NumClasses gibt den groessten Klassenindex + 1 zurueck
func (m ColorMap) NumClasses() int {
	n := 0
	for _, v := range m {
		n = max(n, v+1)
	}
	return n
}

// PascalVOCColorMap gibt die Palette der 21 Pascal-VOC-Klassen zurueck.
// Die Rahmenfarbe (224, 224, 192) der VOC-Masken ist nicht enthalten.
func PascalVOCColorMap() ColorMap {
	m := make(ColorMap, 21)
	for i := range 21 {
		m[vocColor(i)] = i
	}
	return m
}

// vocColor verteilt die Bits des Index auf die hohen Bits von r, g und b
func vocColor(i int) Color {
	var r, g, b uint8
	c := i
	for j := 0; j < 8; j++ {
		r |= uint8((c>>0)&1) << (7 - j)
		g |= uint8((c>>1)&1) << (7 - j)
		b |= uint8((c>>2)&1) << (7 - j)
		c >>= 3
	}
	return Color{r, g, b}
}

// BinaryColorMap bildet schwarz auf 0 und weiss auf 1 ab
func BinaryColorMap() ColorMap {
	return ColorMap{
		{0, 0, 0}:       0,
		{255, 255, 255}: 1,
	}
}

type colorEntry struct {
	R     uint8 `json:"r"`
	G     uint8 `json:"g"`
	B     uint8 `json:"b"`
	Class int   `json:"class"`
}

// LoadColorMap liest eine ColorMap aus einer JSON-Datei der Form
// [{"r": 128, "g": 0, "b": 0, "class": 1}, ...]
func LoadColorMap(path string) (ColorMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []colorEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse color map %s: %w", path, err)
	}

	m := make(ColorMap, len(entries))
	for _, e := range entries {
		c := Color{e.R, e.G, e.B}
		if _, ok := m[c]; ok {
			return nil, fmt.Errorf("parse color map %s: duplicate color %v", path, c)
		}
		if e.Class < 0 || e.Class > 255 {
			return nil, fmt.Errorf("parse color map %s: class %d out of range [0, 255]", path, e.Class)
		}
		m[c] = e.Class
	}
	return m, nil
}
