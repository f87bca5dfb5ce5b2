// Package gdrive - I/O-Operationen fuer Downloads
//
// Diese Datei enthaelt die Datei-Operationen fuer Downloads:
// - save: Speichert den Body ueber eine .tmp-Datei
// - copy: Kopiert Daten mit Stall-Erkennung
// - progressTracker: Meldet Fortschritt gedrosselt an einen Callback
package gdrive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// errStalled wird ausgeloest wenn der Download ins Stocken geraet
var errStalled = errors.New("download stalled")

// progressUpdateInterval drosselt Progress-Callbacks
const progressUpdateInterval = 100 * time.Millisecond

// save speichert r nach dest, zuerst in dest.tmp. cancel muss den Context der
// Anfrage abbrechen, damit ein blockierendes Read bei Stall zurueckkehrt.
func (c *Client) save(ctx context.Context, cancel context.CancelCauseFunc, dest string, r io.Reader, progress *progressTracker) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := c.copy(ctx, cancel, f, r, progress)
	if err != nil {
		os.Remove(tmp)
		return n, err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return n, err
	}

	progress.done()
	return n, os.Rename(tmp, dest)
}

// copy kopiert Daten mit Stall-Erkennung
func (c *Client) copy(ctx context.Context, cancel context.CancelCauseFunc, dst io.Writer, src io.Reader, progress *progressTracker) (int64, error) {
	var n int64
	var lastRead atomic.Int64
	lastRead.Store(time.Now().UnixNano())

	if c.stallTimeout > 0 {
		// Hintergrund-Goroutine fuer Stall-Erkennung
		go c.monitorStall(ctx, cancel, &lastRead)
	}

	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return n, cause
			}
			return n, err
		}

		nr, err := src.Read(buf)
		if err != nil && err != io.EOF {
			if cause := context.Cause(ctx); cause != nil {
				return n, cause
			}
		}
		if nr > 0 {
			lastRead.Store(time.Now().UnixNano())
			if _, werr := dst.Write(buf[:nr]); werr != nil {
				return n, werr
			}
			n += int64(nr)
			progress.add(int64(nr))
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

// monitorStall bricht den Kopiervorgang ab, wenn zu lange keine Daten kamen
func (c *Client) monitorStall(ctx context.Context, cancel context.CancelCauseFunc, lastRead *atomic.Int64) {
	tick := time.NewTicker(min(time.Second, c.stallTimeout))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if time.Since(time.Unix(0, lastRead.Load())) > c.stallTimeout {
				c.logger.Warn("download stalled", "timeout", c.stallTimeout)
				cancel(errStalled)
				return
			}
		}
	}
}

// progressTracker zaehlt heruntergeladene Bytes
type progressTracker struct {
	total     int64
	completed atomic.Int64
	fn        ProgressCallback

	mu   sync.Mutex
	last time.Time
}

func newProgressTracker(total int64, fn ProgressCallback) *progressTracker {
	return &progressTracker{total: total, fn: fn}
}

// add meldet n weitere Bytes, der Callback wird hoechstens alle 100ms aufgerufen
func (p *progressTracker) add(n int64) {
	completed := p.completed.Add(n)
	if p.fn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if now := time.Now(); now.Sub(p.last) >= progressUpdateInterval {
		p.last = now
		p.fn(completed, p.total)
	}
}

// done meldet den Endstand unabhaengig von der Drosselung
func (p *progressTracker) done() {
	if p.fn == nil {
		return
	}

	completed := p.completed.Load()
	total := p.total
	if total < 0 {
		total = completed
	}
	p.fn(completed, total)
}
