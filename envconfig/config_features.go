// config_features.go - Parallelitaets-Einstellungen
//
// Dieses Modul enthaelt:
// - NumParallel: Anzahl paralleler Aufrufe der Reshape-Stufe
// - Shuffle: Standardwert fuer das Mischen beim Aufteilen
package envconfig

import "runtime"

// =============================================================================
// Parallelitaet
// =============================================================================

// NumParallel gibt die Parallelitaet fuer Map-Stufen der Pipeline zurueck
// Konfigurierbar via SEGPREP_NUM_PARALLEL
// Default: Anzahl der logischen CPUs
func NumParallel() uint {
	n := Uint("SEGPREP_NUM_PARALLEL", uint(runtime.NumCPU()))()
	if n == 0 {
		return 1
	}
	return n
}

// =============================================================================
// Feature-Flags
// =============================================================================

var (
	// NoShuffle deaktiviert das Mischen der Liste vor dem Aufteilen
	NoShuffle = Bool("SEGPREP_NO_SHUFFLE")
)
