package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/arrayvc/internal/format"
)

// Commit is everything recorded for one new snapshot.
type Commit struct {
	ID       format.SnapshotID
	ParentID format.SnapshotID // empty for a root snapshot
	Message  string
	Nodes    []format.NodeSnapshot
	Log      *format.TransactionLog // nil for a root snapshot
}

// WriteCommit stores a snapshot, its node listing and its transaction log in
// a single transaction and returns the seq assigned to it.
//
// The parent must already exist (foreign key constraint). Writing the same
// snapshot id twice is an error; history is append-only. Every node the log
// updates must appear in Nodes, since solvers resolve those ids against this
// listing later.
func (s *Store) WriteCommit(ctx context.Context, c Commit) (int64, error) {
	if c.ID == "" {
		return 0, fmt.Errorf("write commit: empty snapshot id")
	}
	if c.ParentID != "" && c.Log == nil {
		return 0, fmt.Errorf("write commit %s: non-root snapshot needs a transaction log", c.ID)
	}

	var body, hash string
	if c.Log != nil {
		if missing := c.Log.UnlistedNodes(c.Nodes); len(missing) > 0 {
			return 0, fmt.Errorf("write commit %s: %w: %v", c.ID, ErrUnlistedNodes, missing)
		}
		var err error
		body, hash, err = marshalLog(c.Log)
		if err != nil {
			return 0, fmt.Errorf("write commit %s: %w", c.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write commit %s: begin: %w", c.ID, err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write commit %s: next seq: %w", c.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, parent_id, seq, message)
		VALUES (?, ?, ?, ?)
	`, string(c.ID), nullableID(c.ParentID), seq, c.Message); err != nil {
		return 0, fmt.Errorf("write commit %s: insert snapshot: %w", c.ID, err)
	}

	if err := insertNodes(ctx, tx, c.ID, c.Nodes); err != nil {
		return 0, fmt.Errorf("write commit %s: %w", c.ID, err)
	}

	if c.Log != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transaction_logs (snapshot_id, log_hash, format_version, body)
			VALUES (?, ?, ?, ?)
		`, string(c.ID), hash, c.Log.FormatVersion, body); err != nil {
			return 0, fmt.Errorf("write commit %s: insert transaction log: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write commit %s: commit: %w", c.ID, err)
	}
	return seq, nil
}

func insertNodes(ctx context.Context, tx *sql.Tx, id format.SnapshotID, nodes []format.NodeSnapshot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (snapshot_id, node_id, path, node_type)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		if !n.Type.Valid() {
			return fmt.Errorf("node %s: invalid node type %q", n.ID, n.Type)
		}
		if _, err := stmt.ExecContext(ctx, string(id), string(n.ID), string(n.Path), string(n.Type)); err != nil {
			return fmt.Errorf("insert node %s at %s: %w", n.ID, n.Path, err)
		}
	}
	return nil
}
