package lsp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// packDebounce coalesces bursts of file events into one reload.
const packDebounce = 200 * time.Millisecond

// packWatcher reloads macro packs when pack files change on disk. It
// covers clients that never send workspace/didChangeWatchedFiles.
type packWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newPackWatcher(ctx context.Context, s *Server) (*packWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// The workspace root is watched flat so newly created pack
	// directories are noticed; only the pack prefixes are walked.
	if err := watcher.Add(s.workspace); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", s.workspace).Msg("failed to watch workspace root")
	}
	for _, dir := range s.packBaseDirs() {
		if err := watchDirRecursive(watcher, dir); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("failed to watch pack directory")
			// Don't fail - continue without watching what we could not reach
		}
	}

	pw := &packWatcher{watcher: watcher, done: make(chan struct{})}
	go pw.run(ctx, s)
	return pw, nil
}

func (pw *packWatcher) close() {
	close(pw.done)
	_ = pw.watcher.Close()
}

func (pw *packWatcher) run(ctx context.Context, s *Server) {
	logger := zerolog.Ctx(ctx)

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case <-pw.done:
			return

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// Directories created after startup need their own watch
			// before events inside them arrive.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDirRecursive(pw.watcher, event.Name); err != nil {
						logger.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					}
					continue
				}
			}

			if !s.isPackFile(event.Name) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(packDebounce, func() {
				logger.Debug().Str("file", event.Name).Msg("pack file changed, reloading")
				if err := s.reloadPacksAndRepublish(ctx); err != nil {
					logger.Error().Err(err).Msg("pack reload failed")
				}
			})

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// packBaseDirs resolves the static prefix of every configured pack glob
// to an absolute directory under the workspace. Prefixes that do not
// exist yet are skipped; their later creation surfaces through the flat
// workspace root watch.
func (s *Server) packBaseDirs() []string {
	seen := map[string]bool{}
	var dirs []string

	for _, patterns := range [][]string{s.cfg.Packs.User, s.cfg.Packs.Extension} {
		for _, pattern := range patterns {
			base, _ := doublestar.SplitPattern(pattern)
			if base == "." || base == "" {
				continue
			}
			dir := filepath.Join(s.workspace, filepath.FromSlash(base))
			if seen[dir] {
				continue
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// isPackFile reports whether path matches one of the configured pack
// globs. Absolute paths are resolved against the workspace first.
func (s *Server) isPackFile(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(s.workspace, path)
		if err != nil {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	for _, patterns := range [][]string{s.cfg.Packs.User, s.cfg.Packs.Extension} {
		for _, pattern := range patterns {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}
