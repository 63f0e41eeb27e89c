package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phaus/ncsync/internal/model"
)

// AddPair inserts a new pair with an auto-assigned integer id and a stable
// external UUID. Extension lists are normalized to lowercase.
func (s *Store) AddPair(ctx context.Context, remoteRoot, localRoot string, extensions, excludePatterns []string) (model.Pair, error) {
	normalized := make([]string, len(extensions))
	for i, ext := range extensions {
		normalized[i] = strings.ToLower(ext)
	}

	id := uuid.New().String()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pairs (uuid, remote_root, local_root, allowed_extensions_csv, exclude_patterns)
		VALUES (?, ?, ?, ?, ?)
	`, id, remoteRoot, localRoot, strings.Join(normalized, ","), strings.Join(excludePatterns, "\n"))
	if err != nil {
		return model.Pair{}, fmt.Errorf("store: add_pair: %w", err)
	}

	pk, err := res.LastInsertId()
	if err != nil {
		return model.Pair{}, fmt.Errorf("store: add_pair last insert id: %w", err)
	}

	return model.Pair{
		ID:                pk,
		UUID:              id,
		RemoteRoot:        remoteRoot,
		LocalRoot:         localRoot,
		AllowedExtensions: normalized,
		ExcludePatterns:   excludePatterns,
	}, nil
}

// DeletePair removes a pair and cascades: all its entries first, then the
// pair row, inside one transaction.
func (s *Store) DeletePair(ctx context.Context, pairID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE pair_id = ?`, pairID); err != nil {
			return fmt.Errorf("store: delete_pair cascade entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pairs WHERE id = ?`, pairID); err != nil {
			return fmt.Errorf("store: delete_pair: %w", err)
		}
		return nil
	})
}

// ListPairs returns every configured pair.
func (s *Store) ListPairs(ctx context.Context) ([]model.Pair, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, uuid, remote_root, local_root, allowed_extensions_csv, exclude_patterns FROM pairs`)
	if err != nil {
		return nil, fmt.Errorf("store: list_pairs: %w", err)
	}
	defer rows.Close()

	var out []model.Pair
	for rows.Next() {
		var p model.Pair
		var extCSV, excludeBlob string
		if err := rows.Scan(&p.ID, &p.UUID, &p.RemoteRoot, &p.LocalRoot, &extCSV, &excludeBlob); err != nil {
			return nil, fmt.Errorf("store: scan pair: %w", err)
		}
		p.AllowedExtensions = splitNonEmpty(extCSV, ",")
		p.ExcludePatterns = splitNonEmpty(excludeBlob, "\n")
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate pairs: %w", err)
	}
	return out, nil
}

// FindPairByUUID looks up a single pair by its external UUID.
func (s *Store) FindPairByUUID(ctx context.Context, id string) (model.Pair, error) {
	var p model.Pair
	var extCSV, excludeBlob string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, uuid, remote_root, local_root, allowed_extensions_csv, exclude_patterns FROM pairs WHERE uuid = ?`, id,
	).Scan(&p.ID, &p.UUID, &p.RemoteRoot, &p.LocalRoot, &extCSV, &excludeBlob)
	if err != nil {
		return model.Pair{}, fmt.Errorf("store: find_pair(%s): %w", id, err)
	}
	p.AllowedExtensions = splitNonEmpty(extCSV, ",")
	p.ExcludePatterns = splitNonEmpty(excludeBlob, "\n")
	return p, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
