// Package executor implements C7: the bounded-concurrency phase runner that
// turns a classified Entry list into webdav requests, filesystem operations
// and state-store commits. Every phase runs at most maxConcurrency actions
// at once and never lets one action's failure cancel its siblings — the
// phase itself always completes, with failed actions simply left unsynced
// for the next pass to retry.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	stdsync "sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/phaus/ncsync/internal/model"
	"github.com/phaus/ncsync/internal/pathcodec"
	"github.com/phaus/ncsync/internal/progress"
	"github.com/phaus/ncsync/internal/snapshot"
	"github.com/phaus/ncsync/internal/store"
	"github.com/phaus/ncsync/internal/webdav"
)

var (
	_ Store            = (*store.Store)(nil)
	_ ProgressRecorder = (*progress.CombinedProgressTracker)(nil)
)

// maxConcurrency bounds every phase to at most this many simultaneous
// requests/filesystem operations, regardless of how many entries it covers.
const maxConcurrency = 10

// Store is the subset of *store.Store the executor needs to commit a
// phase's results. A narrow interface keeps executor tests free of sqlite.
type Store interface {
	ResetForConflict(ctx context.Context, pairID int64, path string) error
	ObserveLocal(ctx context.Context, pairID int64, path string, mtime, capturedAt int64) error
	CommitDownloads(ctx context.Context, pairID int64, results map[string]int64) error
	CommitUploads(ctx context.Context, pairID int64, results map[string]int64) error
	CommitDrops(ctx context.Context, pairID int64, paths []string) error
}

// ProgressRecorder is the progress surface the executor drives: the
// Tracker's Start/Update/Finish/SetOperation/Error, plus the byte/delete
// counters CombinedProgressTracker exposes beyond the plain Tracker
// interface. A nil ProgressRecorder is valid and silently skipped.
type ProgressRecorder interface {
	Start(total int64)
	Update(current int64)
	Finish()
	SetOperation(operation string)
	Error(err error)
	RecordUpload(bytes int64)
	RecordDownload(bytes int64)
	RecordDelete()
}

// conflictTimeFormat is the timestamp format used in §4.6's renamed-aside
// local copy.
const conflictTimeFormat = "20060102_150405"

// RunConflicts materializes every Conflict-classified entry: the local file
// is renamed aside with a "_conflict_<timestamp>" suffix, the renamed copy
// is registered as a fresh local observation (so it uploads under its new
// name), and the original path's local-side knowledge is reset so the next
// phase of this same pass sees it as a Download (§4.6).
func RunConflicts(ctx context.Context, pair model.Pair, capturedAt int64, entries []model.Entry, st Store, tracker ProgressRecorder, log *logrus.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if tracker != nil {
		tracker.SetOperation("resolving conflicts")
		tracker.Start(int64(len(entries)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	var done int64
	var mu stdsync.Mutex

	for _, e := range entries {
		e := e
		g.Go(func() error {
			if err := materializeConflict(gctx, pair, capturedAt, e, st); err != nil {
				log.WithField("path", e.Path).WithError(err).Warn("conflict materialization failed")
				if tracker != nil {
					tracker.Error(err)
				}
			}
			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if tracker != nil {
				tracker.Update(n)
			}
			return nil
		})
	}
	_ = g.Wait()
	if tracker != nil {
		tracker.Finish()
	}
	return nil
}

func materializeConflict(ctx context.Context, pair model.Pair, capturedAt int64, e model.Entry, st Store) error {
	localPath := pathcodec.LocalOf(pair.LocalRoot, e.Path)
	if filepath.Base(localPath) == snapshot.StateStoreFileName {
		return nil
	}

	ext := filepath.Ext(localPath)
	stem := strings.TrimSuffix(filepath.Base(localPath), ext)
	conflictName := fmt.Sprintf("%s_conflict_%s%s", stem, time.Now().Format(conflictTimeFormat), ext)
	conflictLocalPath := filepath.Join(filepath.Dir(localPath), conflictName)

	if _, err := os.Lstat(conflictLocalPath); err == nil {
		return fmt.Errorf("executor: conflict copy %s already exists", conflictLocalPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("executor: stat %s: %w", conflictLocalPath, err)
	}
	if err := os.Rename(localPath, conflictLocalPath); err != nil {
		return fmt.Errorf("executor: rename aside %s: %w", localPath, err)
	}

	info, err := os.Stat(conflictLocalPath)
	if err != nil {
		return fmt.Errorf("executor: stat conflict copy %s: %w", conflictLocalPath, err)
	}
	conflictMtimeMs := info.ModTime().Unix() * 1000
	conflictRelative := joinRelative(path.Dir(e.Path), conflictName)

	if err := st.ObserveLocal(ctx, pair.ID, conflictRelative, conflictMtimeMs, capturedAt); err != nil {
		return fmt.Errorf("executor: observe conflict copy %s: %w", conflictRelative, err)
	}
	if err := st.ResetForConflict(ctx, pair.ID, e.Path); err != nil {
		return fmt.Errorf("executor: reset %s for re-download: %w", e.Path, err)
	}
	return nil
}

func joinRelative(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}

// RunDownloads fetches every Download-classified entry's remote content to
// its local path and commits all resulting local mtimes in one transaction.
func RunDownloads(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, entries []model.Entry, st Store, tracker ProgressRecorder, log *logrus.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if tracker != nil {
		tracker.SetOperation("downloading")
		tracker.Start(int64(len(entries)))
	}

	results := stdsync.Map{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	var done int64
	var mu stdsync.Mutex

	for _, e := range entries {
		e := e
		g.Go(func() error {
			mtimeMs, err := downloadOne(gctx, client, baseURL, username, pair, e, tracker)
			if err != nil {
				log.WithField("path", e.Path).WithError(err).Warn("download failed")
				if tracker != nil {
					tracker.Error(err)
				}
			} else {
				results.Store(e.Path, mtimeMs)
			}
			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if tracker != nil {
				tracker.Update(n)
			}
			return nil
		})
	}
	_ = g.Wait()
	if tracker != nil {
		tracker.Finish()
	}

	committed := map[string]int64{}
	results.Range(func(k, v any) bool {
		committed[k.(string)] = v.(int64)
		return true
	})
	if len(committed) == 0 {
		return nil
	}
	if err := st.CommitDownloads(ctx, pair.ID, committed); err != nil {
		return fmt.Errorf("executor: commit downloads: %w", err)
	}
	return nil
}

func downloadOne(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, e model.Entry, tracker ProgressRecorder) (int64, error) {
	remoteURL, err := pathcodec.RelativeToURL(baseURL, username, pair.RemoteRoot, e.Path)
	if err != nil {
		return 0, fmt.Errorf("build remote url: %w", err)
	}

	body, err := client.Get(ctx, remoteURL)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", e.Path, err)
	}
	defer body.Close()

	localPath := pathcodec.LocalOf(pair.LocalRoot, e.Path)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", filepath.Dir(localPath), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".ncsync-dl-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	written, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("write %s: %w", localPath, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close temp file for %s: %w", localPath, closeErr)
	}
	if tracker != nil {
		tracker.RecordDownload(written)
	}

	mtimeSeconds := e.RemoteMtime / 1000
	mtime := time.Unix(mtimeSeconds, 0)
	if err := os.Chtimes(tmpPath, mtime, mtime); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("set mtime on %s: %w", localPath, err)
	}
	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename into place %s: %w", localPath, err)
	}

	return mtimeSeconds * 1000, nil
}

// RunUploads sends every Upload-classified entry's local content to its
// remote path, creating any missing remote parent collections first, and
// commits all resulting remote mtimes in one transaction.
func RunUploads(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, entries []model.Entry, st Store, tracker ProgressRecorder, log *logrus.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if tracker != nil {
		tracker.SetOperation("uploading")
		tracker.Start(int64(len(entries)))
	}

	results := stdsync.Map{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	var done int64
	var mu stdsync.Mutex

	for _, e := range entries {
		e := e
		g.Go(func() error {
			mtimeMs, err := uploadOne(gctx, client, baseURL, username, pair, e, tracker)
			if err != nil {
				log.WithField("path", e.Path).WithError(err).Warn("upload failed")
				if tracker != nil {
					tracker.Error(err)
				}
			} else {
				results.Store(e.Path, mtimeMs)
			}
			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if tracker != nil {
				tracker.Update(n)
			}
			return nil
		})
	}
	_ = g.Wait()
	if tracker != nil {
		tracker.Finish()
	}

	committed := map[string]int64{}
	results.Range(func(k, v any) bool {
		committed[k.(string)] = v.(int64)
		return true
	})
	if len(committed) == 0 {
		return nil
	}
	if err := st.CommitUploads(ctx, pair.ID, committed); err != nil {
		return fmt.Errorf("executor: commit uploads: %w", err)
	}
	return nil
}

func uploadOne(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, e model.Entry, tracker ProgressRecorder) (int64, error) {
	localPath := pathcodec.LocalOf(pair.LocalRoot, e.Path)
	f, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", localPath, err)
	}

	if err := ensureRemoteParents(ctx, client, baseURL, username, pair, e.Path); err != nil {
		return 0, err
	}

	remoteURL, err := pathcodec.RelativeToURL(baseURL, username, pair.RemoteRoot, e.Path)
	if err != nil {
		return 0, fmt.Errorf("build remote url: %w", err)
	}

	mtimeSeconds := info.ModTime().Unix()
	if err := client.Put(ctx, remoteURL, f, info.Size(), mtimeSeconds); err != nil {
		return 0, fmt.Errorf("put %s: %w", e.Path, err)
	}
	if tracker != nil {
		tracker.RecordUpload(info.Size())
	}

	return mtimeSeconds * 1000, nil
}

// ensureRemoteParents MKCOLs every segment of e's parent directory in turn,
// treating already-exists (405) as success, before the PUT — see SPEC_FULL.md's
// remote parent-directory creation supplement.
func ensureRemoteParents(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, relative string) error {
	dir := path.Dir(relative)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}

	var cumulative string
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" {
			continue
		}
		cumulative = joinRelative(cumulative, seg)
		dirURL, err := pathcodec.RelativeToURL(baseURL, username, pair.RemoteRoot, cumulative)
		if err != nil {
			return fmt.Errorf("build remote dir url %s: %w", cumulative, err)
		}
		if err := client.Mkcol(ctx, dirURL); err != nil {
			return fmt.Errorf("mkcol %s: %w", cumulative, err)
		}
	}
	return nil
}

// RunDeleteRemote propagates every DeleteRemote-classified entry's removal
// and commits the dropped rows in one transaction.
func RunDeleteRemote(ctx context.Context, client webdav.Client, baseURL, username string, pair model.Pair, entries []model.Entry, st Store, tracker ProgressRecorder, log *logrus.Entry) error {
	return runDeletePhase(ctx, "deleting remote", entries, tracker, func(gctx context.Context, e model.Entry) error {
		remoteURL, err := pathcodec.RelativeToURL(baseURL, username, pair.RemoteRoot, e.Path)
		if err != nil {
			return fmt.Errorf("build remote url: %w", err)
		}
		return client.Delete(gctx, remoteURL)
	}, func(paths []string) error {
		return st.CommitDrops(ctx, pair.ID, paths)
	}, log)
}

// RunDeleteLocal propagates every DeleteLocal-classified entry's removal
// and commits the dropped rows in one transaction.
func RunDeleteLocal(ctx context.Context, pair model.Pair, entries []model.Entry, st Store, tracker ProgressRecorder, log *logrus.Entry) error {
	return runDeletePhase(ctx, "deleting local", entries, tracker, func(_ context.Context, e model.Entry) error {
		localPath := pathcodec.LocalOf(pair.LocalRoot, e.Path)
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}, func(paths []string) error {
		return st.CommitDrops(ctx, pair.ID, paths)
	}, log)
}

func runDeletePhase(ctx context.Context, operation string, entries []model.Entry, tracker ProgressRecorder, delete func(context.Context, model.Entry) error, commit func([]string) error, log *logrus.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if tracker != nil {
		tracker.SetOperation(operation)
		tracker.Start(int64(len(entries)))
	}

	var mu stdsync.Mutex
	var succeeded []string
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			err := delete(gctx, e)
			mu.Lock()
			if err != nil {
				log.WithField("path", e.Path).WithError(err).Warn(operation + " failed")
			} else {
				succeeded = append(succeeded, e.Path)
				if tracker != nil {
					tracker.RecordDelete()
				}
			}
			done++
			n := done
			mu.Unlock()
			if tracker != nil {
				if err != nil {
					tracker.Error(err)
				}
				tracker.Update(n)
			}
			return nil
		})
	}
	_ = g.Wait()
	if tracker != nil {
		tracker.Finish()
	}

	if len(succeeded) == 0 {
		return nil
	}
	if err := commit(succeeded); err != nil {
		return fmt.Errorf("executor: commit %s: %w", operation, err)
	}
	return nil
}
