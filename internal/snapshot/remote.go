// Package snapshot implements C5: the remote and local collectors that feed
// freshly observed state into the store ahead of classification.
package snapshot

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/phaus/ncsync/internal/model"
	"github.com/phaus/ncsync/internal/pathcodec"
	"github.com/phaus/ncsync/internal/store"
	"github.com/phaus/ncsync/internal/webdav"
	"github.com/phaus/ncsync/pkg/exclude"
)

// Observer is the subset of *store.Store the collectors need, so tests can
// substitute a fake.
type Observer interface {
	ObserveRemote(ctx context.Context, pairID int64, path string, mtime, capturedAt int64) error
	ObserveLocal(ctx context.Context, pairID int64, path string, mtime, capturedAt int64) error
}

var _ Observer = (*store.Store)(nil)

// CollectRemote issues the single deep PROPFIND rooted at the pair's remote
// root, filters folders and disallowed extensions, and observes every
// surviving file.
func CollectRemote(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, capturedAt int64, observer Observer) error {
	matcher := buildMatcher(pair.ExcludePatterns)

	rootURL, err := pathcodec.RelativeToURL(baseURL, username, pair.RemoteRoot, pathcodec.RootSentinel)
	if err != nil {
		return fmt.Errorf("snapshot: build remote root URL: %w", err)
	}

	body, err := client.Propfind(ctx, rootURL, webdav.DepthInfinity)
	if err != nil {
		return fmt.Errorf("snapshot: propfind %s: %w", rootURL, err)
	}
	defer body.Close()

	records, err := webdav.ParsePropfind(body)
	if err != nil {
		return fmt.Errorf("snapshot: parse propfind response: %w", err)
	}

	for _, rec := range records {
		if rec.IsFolder {
			continue
		}

		relative := pathcodec.StripRoot(pair.RemoteRoot, rec.RelativePath)
		if relative == pathcodec.RootSentinel {
			continue
		}

		ext := extensionOf(relative)
		if !pair.AllowsExtension(ext) {
			continue
		}
		if matcher.ShouldExcludeFile(relative) {
			continue
		}

		if err := observer.ObserveRemote(ctx, pair.ID, relative, rec.RemoteMtimeMs, capturedAt); err != nil {
			return fmt.Errorf("snapshot: observe_remote(%s): %w", relative, err)
		}
	}

	return nil
}

// extensionOf returns the lowercase extension of a storage-form path
// (forward slashes), including the leading dot, or "" for no extension.
func extensionOf(relative string) string {
	return strings.ToLower(path.Ext(relative))
}

// buildMatcher compiles a pair's supplemented exclude patterns
// (SUPPLEMENTED FEATURES) into a gitignore-style Matcher, additive on top of
// the mandatory extension allowlist. An invalid pattern is skipped rather
// than failing the whole collection.
func buildMatcher(patterns []string) *exclude.Matcher {
	set := exclude.NewPatternSet()
	for _, p := range patterns {
		_ = set.AddPattern(p)
	}
	return exclude.NewMatcher(set)
}
