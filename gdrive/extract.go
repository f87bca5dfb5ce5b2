// Package gdrive - Entpacken von ZIP-Archiven
package gdrive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrIllegalPath wird zurueckgegeben wenn ein Archiv-Eintrag ausserhalb des Ziels landen wuerde
var ErrIllegalPath = errors.New("illegal file path in archive")

// Extract entpackt das ZIP-Archiv src nach destDir und gibt die geschriebenen Dateien zurueck
func Extract(src, destDir string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range r.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if rel, err := filepath.Rel(root, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return files, fmt.Errorf("%w: %s", ErrIllegalPath, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return files, err
		}
		files = append(files, target)
	}
	return files, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return err
	}
	return out.Close()
}
