package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/arrayvc/internal/conflict"
	"github.com/roach88/arrayvc/internal/format"
)

// Ancestry returns the snapshots committed after base up to and including
// tip, oldest first, following parent links back from tip.
//
// base == tip yields an empty slice. Returns ErrSnapshotNotFound if tip is
// unknown and ErrNotAncestor if base is not on tip's parent chain.
func (s *Store) Ancestry(ctx context.Context, base, tip format.SnapshotID) ([]SnapshotInfo, error) {
	if _, err := s.ReadSnapshot(ctx, tip); err != nil {
		return nil, fmt.Errorf("ancestry: %w", err)
	}

	// The recursion stops extending once it reaches base, so a base that is
	// on the chain is always its first (lowest seq) element.
	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE chain(id, parent_id, seq, message) AS (
			SELECT id, parent_id, seq, message FROM snapshots WHERE id = ?
			UNION ALL
			SELECT p.id, p.parent_id, p.seq, p.message
			FROM snapshots p JOIN chain c ON p.id = c.parent_id
			WHERE c.id != ?
		)
		SELECT c.id, c.parent_id, c.seq, c.message, COALESCE(t.log_hash, '')
		FROM chain c
		LEFT JOIN transaction_logs t ON t.snapshot_id = c.id
		ORDER BY c.seq ASC
	`, string(tip), string(base))
	if err != nil {
		return nil, fmt.Errorf("ancestry: query: %w", err)
	}
	defer rows.Close()

	var chain []SnapshotInfo
	for rows.Next() {
		info, err := scanSnapshotInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("ancestry: scan: %w", err)
		}
		chain = append(chain, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ancestry: iterate: %w", err)
	}

	if len(chain) == 0 || chain[0].ID != base {
		return nil, fmt.Errorf("ancestry %s..%s: %w", base, tip, ErrNotAncestor)
	}
	return chain[1:], nil
}

// Commits loads the commits made after base up to tip as input for
// conflict.Rebase: each commit's transaction log and a lazy view of the
// snapshot it produced.
func (s *Store) Commits(ctx context.Context, base, tip format.SnapshotID) ([]conflict.Commit, error) {
	chain, err := s.Ancestry(ctx, base, tip)
	if err != nil {
		return nil, err
	}

	commits := make([]conflict.Commit, 0, len(chain))
	for _, info := range chain {
		log, err := s.ReadTransactionLog(ctx, info.ID)
		if err != nil {
			return nil, err
		}
		commits = append(commits, conflict.Commit{
			ID:       info.ID,
			Log:      log,
			Snapshot: s.Snapshot(info.ID),
		})
	}
	return commits, nil
}

// LatestSnapshot returns the snapshot with the highest seq.
// Returns ErrSnapshotNotFound on an empty store.
func (s *Store) LatestSnapshot(ctx context.Context) (SnapshotInfo, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM snapshots ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, fmt.Errorf("latest snapshot: %w", ErrSnapshotNotFound)
	}
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return s.ReadSnapshot(ctx, format.SnapshotID(id))
}
