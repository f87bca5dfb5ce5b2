// config.go - Haupt-Konfigurationsfunktionen fuer segprep
//
// Dieses Modul enthaelt:
// - Datasets: Gibt das Ziel-Verzeichnis fuer Datensaetze zurueck (SEGPREP_DATASETS)
// - DriveURL: Gibt die Basis-URL fuer Google-Drive-Downloads zurueck (SEGPREP_DRIVE_URL)
// - StallTimeout: Gibt das Stall-Timeout fuer Downloads zurueck (SEGPREP_STALL_TIMEOUT)
// - LogLevel: Gibt Log-Level zurueck (SEGPREP_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Parallelitaets-Einstellungen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultDriveURL ist die oeffentliche Google-Drive-Adresse
const DefaultDriveURL = "https://drive.google.com"

// Datasets gibt das Verzeichnis fuer heruntergeladene Datensaetze zurueck
// Konfigurierbar via SEGPREP_DATASETS
// Default: $HOME/.segprep/datasets
func Datasets() string {
	if s := Var("SEGPREP_DATASETS"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".segprep", "datasets")
	}

	return filepath.Join(home, ".segprep", "datasets")
}

// DriveURL gibt die Basis-URL fuer Drive-Downloads zurueck
// Konfigurierbar via SEGPREP_DRIVE_URL
// Ungueltige Werte fallen auf DefaultDriveURL zurueck
func DriveURL() *url.URL {
	s := strings.TrimRight(Var("SEGPREP_DRIVE_URL"), "/")
	if s == "" {
		s = DefaultDriveURL
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		slog.Warn("invalid drive url, using default", "url", s, "default", DefaultDriveURL)
		u, _ = url.Parse(DefaultDriveURL)
	}

	return u
}

// StallTimeout gibt zurueck, wie lange ein Download ohne Daten bleiben darf
// Konfigurierbar via SEGPREP_STALL_TIMEOUT (Dauer oder Sekunden)
// 0 oder negative Werte deaktivieren die Erkennung
// Default: 30 Sekunden
func StallTimeout() (timeout time.Duration) {
	timeout = 30 * time.Second
	if s := Var("SEGPREP_STALL_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			timeout = time.Duration(n) * time.Second
		}
	}

	if timeout < 0 {
		return 0
	}

	return timeout
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via SEGPREP_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SEGPREP_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
