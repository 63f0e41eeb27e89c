package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/phaus/ncsync/internal/model"
)

// StateStoreFileName is excluded from every local collection (§4.6
// Exclusions): the database backing the sync engine itself must never be
// treated as a syncable file.
const StateStoreFileName = "nextcloud-dav-sync.db"

// CollectLocal recursively walks a pair's local root, applying the mandatory
// extension allowlist and the supplemented exclude-pattern filter, and
// observes every surviving regular file. Mtimes are read in milliseconds and
// truncated to whole seconds (I4) before being recorded. An excluded
// directory is pruned entirely rather than descended into.
func CollectLocal(ctx context.Context, pair model.Pair, capturedAt int64, observer Observer) error {
	matcher := buildMatcher(pair.ExcludePatterns)

	return filepath.WalkDir(pair.LocalRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("snapshot: walk %s: %w", p, err)
		}
		if p == pair.LocalRoot {
			return nil
		}

		relative, err := relativeStoragePath(pair.LocalRoot, p)
		if err != nil {
			return fmt.Errorf("snapshot: relativize %s: %w", p, err)
		}

		if d.IsDir() {
			if matcher.ShouldExclude(relative, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if d.Name() == StateStoreFileName {
			return nil
		}
		if matcher.ShouldExclude(relative, false) {
			return nil
		}

		ext := extensionOf(relative)
		if !pair.AllowsExtension(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("snapshot: stat %s: %w", p, err)
		}
		mtimeSeconds := info.ModTime().Unix()
		mtimeMs := mtimeSeconds * 1000

		if err := observer.ObserveLocal(ctx, pair.ID, relative, mtimeMs, capturedAt); err != nil {
			return fmt.Errorf("snapshot: observe_local(%s): %w", relative, err)
		}
		return nil
	})
}

// relativeStoragePath converts an OS-native absolute path under root into
// the pair's forward-slash storage form.
func relativeStoragePath(root, absolute string) (string, error) {
	rel, err := filepath.Rel(root, absolute)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
