package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/roach88/arrayvc/internal/format"
)

// Snapshot is a read-only view of one stored snapshot. It satisfies
// conflict.Snapshot.
type Snapshot struct {
	store *Store
	id    format.SnapshotID
}

// Snapshot returns a lazy view of the snapshot with the given id. Nothing is
// read until ListNodes is ranged over.
func (s *Store) Snapshot(id format.SnapshotID) *Snapshot {
	return &Snapshot{store: s, id: id}
}

// ID returns the snapshot id this view reads.
func (v *Snapshot) ID() format.SnapshotID {
	return v.id
}

// ListNodes streams the snapshot's nodes ordered by path. An unknown snapshot
// yields ErrSnapshotNotFound. Breaking out of the loop releases the rows.
func (v *Snapshot) ListNodes(ctx context.Context) iter.Seq2[format.NodeSnapshot, error] {
	return func(yield func(format.NodeSnapshot, error) bool) {
		fail := func(err error) {
			yield(format.NodeSnapshot{}, fmt.Errorf("list nodes of snapshot %s: %w", v.id, err))
		}

		var one int
		err := v.store.db.QueryRowContext(ctx, `SELECT 1 FROM snapshots WHERE id = ?`, string(v.id)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			fail(ErrSnapshotNotFound)
			return
		}
		if err != nil {
			fail(err)
			return
		}

		rows, err := v.store.db.QueryContext(ctx, `
			SELECT node_id, path, node_type
			FROM nodes
			WHERE snapshot_id = ?
			ORDER BY path COLLATE BINARY ASC
		`, string(v.id))
		if err != nil {
			fail(err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var id, path, typ string
			if err := rows.Scan(&id, &path, &typ); err != nil {
				fail(err)
				return
			}
			node := format.NodeSnapshot{
				ID:   format.NodeID(id),
				Path: format.Path(path),
				Type: format.NodeType(typ),
			}
			if !yield(node, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			fail(err)
		}
	}
}
