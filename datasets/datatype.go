// Package datasets bereitet Segmentierungs-Datensaetze fuer das Training vor:
// Aufteilen von Dateilisten, Dekodieren farbcodierter Label-Bilder, Anbinden
// von Datensatz-Objekten an eine Pipeline und Laden vorgefertigter Records.
package datasets

import (
	"fmt"
	"slices"
)

// DataType ist der Teil eines Datensatzes, auf den sich ein Beispiel bezieht
type DataType string

const (
	TypeTrain DataType = "train"
	TypeTest  DataType = "test"
	TypeVal   DataType = "val"
)

var dataTypes = []DataType{TypeTrain, TypeTest, TypeVal}

// DataTypes gibt alle Teile in der Reihenfolge train, test, val zurueck
func DataTypes() []DataType {
	return slices.Clone(dataTypes)
}

// ParseDataType wandelt einen String in einen DataType um
func ParseDataType(s string) (DataType, error) {
	dt := DataType(s)
	if !slices.Contains(dataTypes, dt) {
		return "", fmt.Errorf("unknown data type %q, please use one of %v", s, dataTypes)
	}
	return dt, nil
}

func (dt DataType) String() string {
	return string(dt)
}
