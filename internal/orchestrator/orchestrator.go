// Package orchestrator implements C8: the top-level sync pass that drives
// the server-identity check, then walks every configured pair through
// begin_pass, snapshot collection, classification, the five execution
// phases in their mandated order, and finish_pass.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phaus/ncsync/internal/classify"
	"github.com/phaus/ncsync/internal/executor"
	"github.com/phaus/ncsync/internal/model"
	"github.com/phaus/ncsync/internal/snapshot"
	"github.com/phaus/ncsync/internal/store"
	"github.com/phaus/ncsync/internal/syncerr"
	"github.com/phaus/ncsync/internal/webdav"
)

// Orchestrator owns the shared client, credentials and store one sync pass
// needs; one instance drives every configured pair sequentially.
type Orchestrator struct {
	Client   webdav.Client
	BaseURL  string
	Username string
	Store    *store.Store
	Tracker  executor.ProgressRecorder // nil disables progress reporting
	Log      *logrus.Logger
}

// Sync runs one full pass: the server-identity check (fatal on failure),
// then every pair in sequence. It returns nil iff the identity check passed
// and at least one pair completed without an orchestrator-level error —
// a single pair failing does not abort the ones after it.
func (o *Orchestrator) Sync(ctx context.Context) error {
	log := logrus.NewEntry(o.Log)

	if err := o.Client.CheckServerIdentity(ctx, o.BaseURL); err != nil {
		return syncerr.NotNextcloud(o.BaseURL, err)
	}

	pairs, err := o.Store.ListPairs(ctx)
	if err != nil {
		return syncerr.StateStoreIO("list pairs", err)
	}
	if len(pairs) == 0 {
		return syncerr.Config("no sync pairs configured", nil)
	}

	var succeeded int
	for _, pair := range pairs {
		pairLog := log.WithField("pair", pair.UUID)
		if err := o.syncPair(ctx, pair, pairLog); err != nil {
			pairLog.WithError(err).Error("pair sync failed")
			continue
		}
		succeeded++
	}

	if succeeded == 0 {
		return fmt.Errorf("orchestrator: every pair failed this pass")
	}
	log.WithField("pairs_synced", succeeded).Info("sync finished")
	return nil
}

// syncPair runs one pair through begin_pass → snapshot → classify →
// conflict → download → upload → delete-remote → delete-local →
// finish_pass. Phase execution errors (contained, non-fatal per §7) are
// logged and the pass continues; only a failure to even begin/finish the
// pass, collect snapshots, or read entries back aborts this pair's sync.
func (o *Orchestrator) syncPair(ctx context.Context, pair model.Pair, log *logrus.Entry) error {
	capturedAt := time.Now().UnixMilli()

	if err := o.Store.BeginPass(ctx, pair.ID, capturedAt); err != nil {
		return syncerr.StateStoreIO("begin_pass", err)
	}

	if err := snapshot.CollectRemote(ctx, o.Client, o.BaseURL, o.Username, pair, capturedAt, o.Store); err != nil {
		return fmt.Errorf("orchestrator: collect remote snapshot: %w", err)
	}
	if err := snapshot.CollectLocal(ctx, pair, capturedAt, o.Store); err != nil {
		return fmt.Errorf("orchestrator: collect local snapshot: %w", err)
	}

	entries, err := o.Store.AllEntries(ctx, pair.ID)
	if err != nil {
		return syncerr.StateStoreIO("read entries", err)
	}

	conflicts := partitionOf(entries, classify.Conflict)
	if err := executor.RunConflicts(ctx, pair, capturedAt, conflicts, o.Store, o.Tracker, log); err != nil {
		log.WithError(err).Warn("conflict phase commit failed")
	}

	// Conflict materialization resets the original path's local knowledge
	// so it reclassifies as Download within this same pass (§4.6); re-read
	// and re-partition to pick that up before running the transfer phases.
	entries, err = o.Store.AllEntries(ctx, pair.ID)
	if err != nil {
		return syncerr.StateStoreIO("read entries after conflict phase", err)
	}

	downloads := partitionOf(entries, classify.Download)
	if err := executor.RunDownloads(ctx, o.Client, o.BaseURL, o.Username, pair, downloads, o.Store, o.Tracker, log); err != nil {
		log.WithError(err).Warn("download phase commit failed")
	}

	uploads := partitionOf(entries, classify.Upload)
	if err := executor.RunUploads(ctx, o.Client, o.BaseURL, o.Username, pair, uploads, o.Store, o.Tracker, log); err != nil {
		log.WithError(err).Warn("upload phase commit failed")
	}

	deleteRemote := partitionOf(entries, classify.DeleteRemote)
	if err := executor.RunDeleteRemote(ctx, o.Client, o.BaseURL, o.Username, pair, deleteRemote, o.Store, o.Tracker, log); err != nil {
		log.WithError(err).Warn("delete-remote phase commit failed")
	}

	deleteLocal := partitionOf(entries, classify.DeleteLocal)
	if err := executor.RunDeleteLocal(ctx, pair, deleteLocal, o.Store, o.Tracker, log); err != nil {
		log.WithError(err).Warn("delete-local phase commit failed")
	}

	if err := o.Store.FinishPass(ctx, pair.ID); err != nil {
		return syncerr.StateStoreIO("finish_pass", err)
	}
	return nil
}

// partitionOf classifies every entry and returns the subset matching want,
// in the entries' original order.
func partitionOf(entries []model.Entry, want classify.Action) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if classify.Classify(e) == want {
			out = append(out, e)
		}
	}
	return out
}
