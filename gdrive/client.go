// Package gdrive - Download von Archiven aus Google Drive
//
// Diese Datei enthaelt den Client und seine Optionen. Der Client laedt Dateien
// ueber den oeffentlichen uc-Endpunkt, bestaetigt die Virenscan-Warnung grosser
// Dateien und entpackt ZIP-Archive in ein Zielverzeichnis.
//
// Hauptfunktionen:
// - NewClient: Erstellt einen Client mit Defaults aus envconfig
// - Download: Laedt eine Datei anhand ihrer Drive-ID herunter
// - DownloadAndExtract: Laedt ein Archiv und entpackt es
package gdrive

import (
	"cmp"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/segprep/segprep/envconfig"
)

const defaultUserAgent = "segprep/0.1"

// Archive beschreibt ein Archiv auf Google Drive
type Archive struct {
	// Name ist der lokale Dateiname, z.B. "pascal-512x512-rgb-crop-and-pad.zip"
	Name string
	// ID ist die Drive-Datei-ID
	ID string
}

// Client laedt Dateien von Google Drive
type Client struct {
	client       *http.Client
	baseURL      *url.URL
	userAgent    string
	stallTimeout time.Duration
	logger       *slog.Logger
}

// ClientOption konfiguriert einen Client
type ClientOption func(*Client)

// WithHTTPClient setzt den HTTP-Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithBaseURL ueberschreibt die Drive-Basis-URL (z.B. fuer Tests)
func WithBaseURL(u *url.URL) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithStallTimeout setzt das Stall-Timeout, 0 deaktiviert die Erkennung
func WithStallTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.stallTimeout = d }
}

// WithUserAgent setzt den User-Agent Header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger setzt den Logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient erstellt einen Client. Ohne Optionen gelten SEGPREP_DRIVE_URL
// und SEGPREP_STALL_TIMEOUT.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      envconfig.DriveURL(),
		stallTimeout: envconfig.StallTimeout(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = cmp.Or(c.client, http.DefaultClient)
	c.userAgent = cmp.Or(c.userAgent, defaultUserAgent)
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// ProgressCallback wird waehrend des Downloads aufgerufen
type ProgressCallback func(completed, total int64)

// DownloadOption konfiguriert einen einzelnen Download
type DownloadOption func(*downloadConfig)

type downloadConfig struct {
	checkExists bool
	progressFn  ProgressCallback
}

// WithCheckExists ueberspringt den Download, wenn die Zieldatei schon existiert
func WithCheckExists(check bool) DownloadOption {
	return func(cfg *downloadConfig) { cfg.checkExists = check }
}

// WithProgress setzt den Progress-Callback
func WithProgress(fn ProgressCallback) DownloadOption {
	return func(cfg *downloadConfig) { cfg.progressFn = fn }
}

func newDownloadConfig(opts []DownloadOption) *downloadConfig {
	cfg := &downloadConfig{checkExists: true}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
