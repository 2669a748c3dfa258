package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/arrayvc/internal/format"
)

// SnapshotInfo is the stored header of one snapshot.
type SnapshotInfo struct {
	ID       format.SnapshotID `json:"id"`
	ParentID format.SnapshotID `json:"parent_id,omitempty"`
	Seq      int64             `json:"seq"`
	Message  string            `json:"message"`
	LogHash  string            `json:"log_hash,omitempty"` // empty for a root snapshot
}

// ReadSnapshot returns the header of a snapshot.
// Returns ErrSnapshotNotFound if the id is unknown.
func (s *Store) ReadSnapshot(ctx context.Context, id format.SnapshotID) (SnapshotInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.parent_id, s.seq, s.message, COALESCE(t.log_hash, '')
		FROM snapshots s
		LEFT JOIN transaction_logs t ON t.snapshot_id = s.id
		WHERE s.id = ?
	`, string(id))

	info, err := scanSnapshotInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, fmt.Errorf("read snapshot %s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	return info, nil
}

// ReadTransactionLog returns the log of the commit that produced a snapshot.
// Returns ErrTransactionLogNotFound if none is stored.
func (s *Store) ReadTransactionLog(ctx context.Context, id format.SnapshotID) (*format.TransactionLog, error) {
	var body, hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT body, log_hash FROM transaction_logs WHERE snapshot_id = ?
	`, string(id)).Scan(&body, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read transaction log %s: %w", id, ErrTransactionLogNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read transaction log %s: %w", id, err)
	}

	log, err := unmarshalLog(body, hash)
	if err != nil {
		return nil, fmt.Errorf("read transaction log %s: %w", id, err)
	}
	return log, nil
}

// ReadNodes returns the full node listing of a snapshot ordered by path.
// Returns an empty slice (not nil) for a snapshot with no nodes.
func (s *Store) ReadNodes(ctx context.Context, id format.SnapshotID) ([]format.NodeSnapshot, error) {
	nodes := []format.NodeSnapshot{}
	for node, err := range s.Snapshot(id).ListNodes(ctx) {
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotInfo(row rowScanner) (SnapshotInfo, error) {
	var (
		info     SnapshotInfo
		id       string
		parentID sql.NullString
	)
	if err := row.Scan(&id, &parentID, &info.Seq, &info.Message, &info.LogHash); err != nil {
		return SnapshotInfo{}, err
	}
	info.ID = format.SnapshotID(id)
	if parentID.Valid {
		info.ParentID = format.SnapshotID(parentID.String)
	}
	return info, nil
}
