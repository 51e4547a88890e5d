package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// Source yields the catalog to read from. Both *Catalog and *Holder satisfy it.
type Source interface {
	Current() *Catalog
}

// Current lets a fixed catalog act as its own Source.
func (c *Catalog) Current() *Catalog { return c }

// Holder publishes the latest successfully loaded catalog. Readers never see a
// partially built catalog; a failed reload keeps the previous one.
type Holder struct {
	current  atomic.Pointer[Catalog]
	patterns []string
	logger   *slog.Logger
}

// NewHolder wraps an initial catalog together with the pack patterns used to rebuild it.
func NewHolder(initial *Catalog, patterns []string, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	if initial == nil {
		initial = Default()
	}
	h := &Holder{patterns: append([]string(nil), patterns...), logger: logger}
	h.current.Store(initial)
	return h
}

// Current returns the active catalog.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Reload rebuilds the catalog from the configured packs.
func (h *Holder) Reload() error {
	c, err := Load(h.patterns, h.logger)
	if err != nil {
		return err
	}
	h.current.Store(c)
	return nil
}

// Watch reloads the catalog whenever a pack file under a watched directory
// changes. Only the static base directory of each pattern is watched.
func (h *Holder) Watch(ctx context.Context) error {
	dirs := watchDirs(h.patterns)
	if len(dirs) == 0 {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create pack watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		h.logger.Debug("watching scenario packs", slog.String("dir", dir))
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isPackFile(ev.Name) {
				pending = time.After(reloadDebounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("scenario pack watcher error", slog.Any("error", werr))
		case <-pending:
			pending = nil
			if err := h.Reload(); err != nil {
				h.logger.Warn("scenario pack reload failed, keeping previous catalog", slog.Any("error", err))
				continue
			}
			h.logger.Info("scenario catalog reloaded", slog.Int("scenarios", h.Current().Len()))
		}
	}
}

func watchDirs(patterns []string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		base = filepath.FromSlash(base)
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		dirs = append(dirs, base)
	}
	return dirs
}

func isPackFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
