// Package gdrive - Download-Koordination fuer Drive-Dateien
//
// Diese Datei enthaelt den Ablauf eines Downloads:
// - Download: Erste Anfrage, ggf. Bestaetigung der Virenscan-Warnung
// - findConfirmation: Liest Bestaetigungs-Token aus Cookies oder HTML
// - DownloadAndExtract: Laedt ein Archiv und entpackt es ins Zielverzeichnis
//
// Es gibt keine Retries: jeder Fehler wird unveraendert zurueckgegeben.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoDownloadLink wird zurueckgegeben wenn Drive nur eine HTML-Seite liefert,
// z.B. bei ueberschrittenem Kontingent oder fehlenden Rechten
var ErrNoDownloadLink = errors.New("drive: no download link in response")

// maxHTMLSize begrenzt das Lesen von Warnseiten
const maxHTMLSize = 1 << 20

var (
	reConfirmParam = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)
	reConfirmInput = regexp.MustCompile(`name="confirm"\s+value="([^"]+)"`)
	reUUIDInput    = regexp.MustCompile(`name="uuid"\s+value="([^"]+)"`)
	reFormAction   = regexp.MustCompile(`<form[^>]+action="([^"]+)"`)
)

// confirmation enthaelt die Parameter fuer die bestaetigte zweite Anfrage
type confirmation struct {
	action string
	token  string
	uuid   string
}

// Download laedt die Datei mit der Drive-ID id nach dest.
// Die Daten werden erst nach dest.tmp geschrieben und am Ende umbenannt.
func (c *Client) Download(ctx context.Context, id, dest string, opts ...DownloadOption) error {
	cfg := newDownloadConfig(opts)
	if cfg.checkExists {
		if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
			c.logger.Debug("file already exists, skipping download", "id", id, "path", dest)
			return nil
		}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	hc := *c.client
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return err
		}
		hc.Jar = jar
	}

	resp, err := c.get(ctx, &hc, c.downloadURL(id, confirmation{}))
	if err != nil {
		return err
	}

	if isHTML(resp) {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLSize))
		resp.Body.Close()
		if err != nil {
			return err
		}

		conf := findConfirmation(resp.Cookies(), string(body))
		if conf.token == "" {
			return fmt.Errorf("%w: %s", ErrNoDownloadLink, id)
		}

		c.logger.Debug("confirming large file download", "id", id)
		resp, err = c.get(ctx, &hc, c.downloadURL(id, conf))
		if err != nil {
			return err
		}
		if isHTML(resp) {
			resp.Body.Close()
			return fmt.Errorf("%w: %s", ErrNoDownloadLink, id)
		}
	}
	defer resp.Body.Close()

	n, err := c.save(ctx, cancel, dest, resp.Body, newProgressTracker(resp.ContentLength, cfg.progressFn))
	if err != nil {
		return err
	}

	c.logger.Debug("download complete", "id", id, "path", dest, "size", n)
	return nil
}

// DownloadAndExtract laedt das Archiv a nach destDir/a.Name und entpackt es nach destDir
func (c *Client) DownloadAndExtract(ctx context.Context, a Archive, destDir string, opts ...DownloadOption) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	archivePath := filepath.Join(destDir, a.Name)
	if err := c.Download(ctx, a.ID, archivePath, opts...); err != nil {
		return err
	}

	c.logger.Info("extracting archive", "archive", archivePath, "dest", destDir)
	files, err := Extract(archivePath, destDir)
	if err != nil {
		return err
	}

	c.logger.Debug("archive extracted", "archive", archivePath, "files", len(files))
	return nil
}

// get fuehrt eine GET-Anfrage aus und prueft den Status
func (c *Client) get(ctx context.Context, hc *http.Client, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp, nil
}

// downloadURL baut die uc-URL bzw. die URL aus dem Bestaetigungsformular
func (c *Client) downloadURL(id string, conf confirmation) *url.URL {
	u := c.baseURL.JoinPath("uc")
	if conf.action != "" {
		if action, err := c.baseURL.Parse(conf.action); err == nil {
			u = action
		}
	}

	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", id)
	if conf.token != "" {
		q.Set("confirm", conf.token)
	}
	if conf.uuid != "" {
		q.Set("uuid", conf.uuid)
	}
	u.RawQuery = q.Encode()
	return u
}

// findConfirmation sucht das Bestaetigungs-Token zuerst in Cookies
// (download_warning_*), dann im HTML der Warnseite
func findConfirmation(cookies []*http.Cookie, body string) confirmation {
	var conf confirmation
	for _, cookie := range cookies {
		if strings.HasPrefix(cookie.Name, "download_warning") {
			conf.token = cookie.Value
			return conf
		}
	}

	if m := reConfirmInput.FindStringSubmatch(body); m != nil {
		conf.token = m[1]
	} else if m := reConfirmParam.FindStringSubmatch(body); m != nil {
		conf.token = m[1]
	}
	if m := reUUIDInput.FindStringSubmatch(body); m != nil {
		conf.uuid = m[1]
	}
	if m := reFormAction.FindStringSubmatch(body); m != nil {
		conf.action = strings.ReplaceAll(m[1], "&amp;", "&")
	}
	return conf
}

func isHTML(resp *http.Response) bool {
	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return mt == "text/html"
}
