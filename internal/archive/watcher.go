package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/casedex/internal/model"
	"go.uber.org/zap"
)

// ScanHandler receives the outcome of every re-scan
type ScanHandler func(*model.Analysis, error)

// Watcher re-scans an archive when documents under it change. Bursts of
// events within the debounce window trigger a single scan.
type Watcher struct {
	root     string
	scanner  *Scanner
	debounce time.Duration
	handler  ScanHandler
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
}

// NewWatcher creates a watcher for root
func NewWatcher(root string, s *Scanner, debounce time.Duration, handler ScanHandler) (*Watcher, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		root:     root,
		scanner:  s,
		debounce: debounce,
		handler:  handler,
		logger:   s.logger,
		fsw:      fsw,
	}, nil
}

// Run blocks until ctx is done. It does not scan on start; callers run the
// initial scan themselves.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.logger.Info("watching archive", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("archive changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			analysis, err := w.scanner.Scan(ctx, w.root)
			if ctx.Err() != nil {
				return nil
			}
			if w.handler != nil {
				w.handler(analysis, err)
			}
		}
	}
}

// relevant reports whether an event can change the scan result
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	rel := relativePath(w.root, event.Name)
	if hiddenPath(rel) {
		return false
	}
	if overrides := w.scanner.cfg.OverridesFile; overrides != "" && rel == filepath.ToSlash(overrides) {
		return true
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		// A removed directory takes its documents with it
		return true
	}
	return w.scanner.Matches(event.Name)
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

func hiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
