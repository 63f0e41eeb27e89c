package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phaus/ncsync/internal/model"
)

// BeginPass clears exists_remote/exists_local for every entry of pair so the
// upcoming snapshot collectors re-establish them from scratch (I2).
func (s *Store) BeginPass(ctx context.Context, pairID int64, capturedAt int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE entries SET exists_remote = 0, exists_local = 0, captured_at = ? WHERE pair_id = ?`,
			capturedAt, pairID)
		if err != nil {
			return fmt.Errorf("store: begin_pass: %w", err)
		}
		return nil
	})
}

// ObserveRemote upserts the remote side of (pair_id, path): insert with
// exists_remote true, or on conflict update remote_mtime/exists_remote/
// captured_at. Local fields are never touched.
func (s *Store) ObserveRemote(ctx context.Context, pairID int64, path string, mtime, capturedAt int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (pair_id, path, remote_mtime, exists_remote, captured_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (pair_id, path) DO UPDATE SET
			remote_mtime = excluded.remote_mtime,
			exists_remote = 1,
			captured_at = excluded.captured_at
	`, pairID, path, mtime, capturedAt)
	if err != nil {
		return fmt.Errorf("store: observe_remote(%s): %w", path, err)
	}
	return nil
}

// ObserveLocal is symmetric to ObserveRemote for the local side.
func (s *Store) ObserveLocal(ctx context.Context, pairID int64, path string, mtime, capturedAt int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (pair_id, path, local_mtime, exists_local, captured_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (pair_id, path) DO UPDATE SET
			local_mtime = excluded.local_mtime,
			exists_local = 1,
			captured_at = excluded.captured_at
	`, pairID, path, mtime, capturedAt)
	if err != nil {
		return fmt.Errorf("store: observe_local(%s): %w", path, err)
	}
	return nil
}

// AllEntries returns every entry of a pair, for the classifier to partition
// into action lists.
func (s *Store) AllEntries(ctx context.Context, pairID int64) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pair_id, path, remote_mtime, remote_mtime_prev, exists_remote,
		       local_mtime, local_mtime_prev, exists_local, synced, captured_at
		FROM entries WHERE pair_id = ?
	`, pairID)
	if err != nil {
		return nil, fmt.Errorf("store: select_for(pair %d): %w", pairID, err)
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		var e model.Entry
		var remoteMtime, localMtime sql.NullInt64
		var existsRemote, existsLocal, synced int
		if err := rows.Scan(&e.PairID, &e.Path, &remoteMtime, &e.RemoteMtimePrev, &existsRemote,
			&localMtime, &e.LocalMtimePrev, &existsLocal, &synced, &e.CapturedAt); err != nil {
			return nil, fmt.Errorf("store: scan entry: %w", err)
		}
		e.RemoteMtime = remoteMtime.Int64
		e.LocalMtime = localMtime.Int64
		e.ExistsRemote = existsRemote != 0
		e.ExistsLocal = existsLocal != 0
		e.Synced = synced != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate entries: %w", err)
	}
	return out, nil
}

// MarkDownloaded records a successful download: the local side now exists at
// mtime and the row is confirmed synced.
func (s *Store) MarkDownloaded(ctx context.Context, pairID int64, path string, mtime int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET exists_local = 1, local_mtime = ?, synced = 1 WHERE pair_id = ? AND path = ?`,
		mtime, pairID, path)
	if err != nil {
		return fmt.Errorf("store: mark_downloaded(%s): %w", path, err)
	}
	return nil
}

// MarkUploaded records a successful upload: the remote side now exists at
// mtime and the row is confirmed synced.
func (s *Store) MarkUploaded(ctx context.Context, pairID int64, path string, mtime int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET exists_remote = 1, remote_mtime = ?, synced = 1 WHERE pair_id = ? AND path = ?`,
		mtime, pairID, path)
	if err != nil {
		return fmt.Errorf("store: mark_uploaded(%s): %w", path, err)
	}
	return nil
}

// Drop removes an entry's row entirely, used after a successful delete in
// either direction.
func (s *Store) Drop(ctx context.Context, pairID int64, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE pair_id = ? AND path = ?`, pairID, path)
	if err != nil {
		return fmt.Errorf("store: drop(%s): %w", path, err)
	}
	return nil
}

// ResetForConflict clears an entry's local-side knowledge after its local
// file has been renamed aside by the conflict phase: exists_local, local
// mtime and synced are all zeroed, leaving the remote side untouched. This
// guarantees the entry is re-evaluated as a Download in the very next
// phase of the same pass, per §4.6's conflict rule, rather than leaving the
// outcome to an incidental mtime comparison against stale local data.
func (s *Store) ResetForConflict(ctx context.Context, pairID int64, path string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET exists_local = 0, local_mtime = 0, synced = 0 WHERE pair_id = ? AND path = ?`,
		pairID, path)
	if err != nil {
		return fmt.Errorf("store: reset_for_conflict(%s): %w", path, err)
	}
	return nil
}

// CommitDownloads applies every successful download of a phase in one
// transaction (§4.6's "all state-store mutations from a phase land in a
// single transaction"). Keyed by path, valued by the remote mtime now
// mirrored locally.
func (s *Store) CommitDownloads(ctx context.Context, pairID int64, results map[string]int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`UPDATE entries SET exists_local = 1, local_mtime = ?, synced = 1 WHERE pair_id = ? AND path = ?`)
		if err != nil {
			return fmt.Errorf("store: commit_downloads prepare: %w", err)
		}
		defer stmt.Close()
		for path, mtime := range results {
			if _, err := stmt.ExecContext(ctx, mtime, pairID, path); err != nil {
				return fmt.Errorf("store: commit_downloads(%s): %w", path, err)
			}
		}
		return nil
	})
}

// CommitUploads is symmetric to CommitDownloads for the upload phase.
func (s *Store) CommitUploads(ctx context.Context, pairID int64, results map[string]int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`UPDATE entries SET exists_remote = 1, remote_mtime = ?, synced = 1 WHERE pair_id = ? AND path = ?`)
		if err != nil {
			return fmt.Errorf("store: commit_uploads prepare: %w", err)
		}
		defer stmt.Close()
		for path, mtime := range results {
			if _, err := stmt.ExecContext(ctx, mtime, pairID, path); err != nil {
				return fmt.Errorf("store: commit_uploads(%s): %w", path, err)
			}
		}
		return nil
	})
}

// CommitDrops applies every successful deletion (either direction) of a
// phase in one transaction.
func (s *Store) CommitDrops(ctx context.Context, pairID int64, paths []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM entries WHERE pair_id = ? AND path = ?`)
		if err != nil {
			return fmt.Errorf("store: commit_drops prepare: %w", err)
		}
		defer stmt.Close()
		for _, path := range paths {
			if _, err := stmt.ExecContext(ctx, pairID, path); err != nil {
				return fmt.Errorf("store: commit_drops(%s): %w", path, err)
			}
		}
		return nil
	})
}

// FinishPass rotates current state into prior state for every entry of the
// pair: first confirming synced for rows that now agree on both sides, then
// copying *_mtime into *_mtime_prev.
func (s *Store) FinishPass(ctx context.Context, pairID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE entries SET synced = 1
			WHERE pair_id = ? AND exists_remote = 1 AND exists_local = 1
			  AND local_mtime = remote_mtime AND synced = 0
		`, pairID)
		if err != nil {
			return fmt.Errorf("store: finish_pass confirm synced: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE entries SET local_mtime_prev = local_mtime, remote_mtime_prev = remote_mtime
			WHERE pair_id = ?
		`, pairID)
		if err != nil {
			return fmt.Errorf("store: finish_pass rotate prev: %w", err)
		}
		return nil
	})
}
