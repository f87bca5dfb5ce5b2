package datasets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/segprep/segprep/gdrive"
)

// ErrUnknownTag ist der Basisfehler von UnknownTagError
var ErrUnknownTag = errors.New("unknown records tag")

// googleDriveRecordsByTag ordnet jedem Tag die Google-Drive-ID seines Archivs zu
var googleDriveRecordsByTag = newRecordsTable()

func newRecordsTable() *orderedmap.OrderedMap[string, string] {
	m := orderedmap.New[string, string]()
	m.Set("pascal-512x512-rgb-crop-and-pad", "1gtmElm8jOWqdFDt_StZXYudJOwFYQKyU")
	m.Set("tacobinary-512x512-resize", "1ziK05B29YjTpx6UuawHQ_oantvMoiqPi")
	return m
}

// Tags gibt alle bekannten Tags in Tabellenreihenfolge zurueck
func Tags() []string {
	tags := make([]string, 0, googleDriveRecordsByTag.Len())
	for pair := googleDriveRecordsByTag.Oldest(); pair != nil; pair = pair.Next() {
		tags = append(tags, pair.Key)
	}
	return tags
}

// DriveID gibt die Google-Drive-ID eines Tags zurueck
func DriveID(tag string) (string, bool) {
	return googleDriveRecordsByTag.Get(tag)
}

// UnknownTagError wird fuer Tags ausserhalb der Tabelle zurueckgegeben
type UnknownTagError struct {
	Tag   string
	Valid []string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("cannot download records of tag %s, please use one of %v", e.Tag, e.Valid)
}

func (e *UnknownTagError) Unwrap() error {
	return ErrUnknownTag
}

// Fetcher laedt ein Archiv herunter und entpackt es
type Fetcher interface {
	DownloadAndExtract(ctx context.Context, a gdrive.Archive, destDir string, opts ...gdrive.DownloadOption) error
}

type recordsConfig struct {
	fetcher  Fetcher
	progress gdrive.ProgressCallback
}

// RecordsOption konfiguriert DownloadRecords
type RecordsOption func(*recordsConfig)

// WithFetcher ersetzt den Standard-Client
func WithFetcher(f Fetcher) RecordsOption {
	return func(c *recordsConfig) { c.fetcher = f }
}

// WithRecordsProgress meldet den Fortschritt des Downloads
func WithRecordsProgress(fn gdrive.ProgressCallback) RecordsOption {
	return func(c *recordsConfig) { c.progress = fn }
}

// DownloadRecords laedt das Archiv zu tag nach destDir und entpackt es dort.
// Das Archiv wird immer neu geladen, auch wenn es bereits existiert.
func DownloadRecords(ctx context.Context, tag, destDir string, opts ...RecordsOption) error {
	id, ok := DriveID(tag)
	if !ok {
		return &UnknownTagError{Tag: tag, Valid: Tags()}
	}

	var c recordsConfig
	for _, opt := range opts {
		opt(&c)
	}
	if c.fetcher == nil {
		c.fetcher = gdrive.NewClient()
	}

	dlOpts := []gdrive.DownloadOption{gdrive.WithCheckExists(false)}
	if c.progress != nil {
		dlOpts = append(dlOpts, gdrive.WithProgress(c.progress))
	}

	slog.Info("download and extract", "id", id, "tag", tag, "dest", destDir)
	return c.fetcher.DownloadAndExtract(ctx, gdrive.Archive{Name: tag + ".zip", ID: id}, destDir, dlOpts...)
}
