// Package filesource reads the inventory dataset from a local CSV file and
// watches it for changes.
package filesource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
)

// DefaultDebounce coalesces bursts of writes from editors and copy tools.
const DefaultDebounce = 250 * time.Millisecond

// Source implements pipeline.Source over a CSV file.
type Source struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a file source for path.
func New(path string, logger *slog.Logger) *Source {
	return &Source{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// Path returns the watched file path.
func (s *Source) Path() string { return s.path }

// Fetch reads and parses the file.
func (s *Source) Fetch(_ context.Context) ([]domain.RawRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, err := domain.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.path, err)
	}
	return rows, nil
}

// Watch calls onChange after the file is written, created, or replaced, until
// ctx is cancelled. The parent directory is watched so atomic renames by
// editors are seen.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.logger.Info("watching dataset file", "path", s.path)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug("dataset file changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("dataset watcher error", "error", err)

		case <-pending:
			pending = nil
			onChange()
		}
	}
}
