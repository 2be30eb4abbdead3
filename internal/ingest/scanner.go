// Package ingest discovers media files dropped into the watch directory and
// feeds them through the admission gate. Two producers cooperate: an fsnotify
// watcher for low-latency pickup and a periodic full scan that catches
// anything the watcher missed, e.g. files present before startup.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"mediascribe/internal/pipeline"
)

// defaultSettleDelay gives the producer time to finish writing a file after
// the create event fires.
const defaultSettleDelay = 500 * time.Millisecond

// Admitter is the slice of the admission gate the scanner needs.
type Admitter interface {
	Admit(ctx context.Context, filename string) (*pipeline.Admission, error)
}

// Scanner moves eligible media files from the watch directory into the upload
// directory and admits them as jobs.
type Scanner struct {
	gate         Admitter
	watchDir     string
	uploadDir    string
	scanInterval time.Duration
	settleDelay  time.Duration
}

func NewScanner(gate Admitter, watchDir, uploadDir string, scanInterval time.Duration) *Scanner {
	return &Scanner{
		gate:         gate,
		watchDir:     watchDir,
		uploadDir:    uploadDir,
		scanInterval: scanInterval,
		settleDelay:  defaultSettleDelay,
	}
}

// Run blocks until ctx is cancelled. It performs one full scan immediately,
// then reacts to filesystem events and repeats the full scan on the
// configured interval.
func (s *Scanner) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.watchDir); err != nil {
		return fmt.Errorf("watching %s: %w", s.watchDir, err)
	}

	slog.Info("ingest scanner started",
		"watch_dir", s.watchDir, "scan_interval", s.scanInterval)

	s.scanOnce(ctx)

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ingest scanner stopped")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&fsnotify.Create == 0 || !AllowedExtension(event.Name) {
				continue
			}
			// Wait for the file to settle before moving it.
			select {
			case <-time.After(s.settleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			s.ingest(ctx, filepath.Base(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			slog.Error("filesystem watcher error", "error", err)

		case <-ticker.C:
			s.scanOnce(ctx)
		}
	}
}

func (s *Scanner) scanOnce(ctx context.Context) {
	entries, err := os.ReadDir(s.watchDir)
	if err != nil {
		slog.Error("scanning watch directory", "dir", s.watchDir, "error", err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !AllowedExtension(entry.Name()) {
			continue
		}
		s.ingest(ctx, entry.Name())
	}
}

// ingest moves one file into the upload directory and admits it. Workers
// read source files from the upload directory, so the move has to land
// before the job becomes claimable.
func (s *Scanner) ingest(ctx context.Context, filename string) {
	src := filepath.Join(s.watchDir, filename)
	dst := filepath.Join(s.uploadDir, filename)

	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			// Another producer already picked it up.
			return
		}
		slog.Error("moving file to upload directory", "filename", filename, "error", err)
		return
	}

	if _, err := s.gate.Admit(ctx, filename); err != nil {
		slog.Error("admitting scanned file", "filename", filename, "error", err)
		// Put the file back where the scan loop will find it, so a store
		// outage delays the job instead of losing it.
		if err := os.Rename(dst, src); err != nil {
			slog.Error("returning file to watch directory", "filename", filename, "error", err)
		}
	}
}
