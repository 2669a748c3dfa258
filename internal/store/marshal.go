package store

import (
	"fmt"

	"github.com/roach88/arrayvc/internal/format"
)

// marshalLog converts a TransactionLog to canonical JSON TEXT for storage,
// together with its content hash.
func marshalLog(log *format.TransactionLog) (body string, hash string, err error) {
	data, err := log.MarshalCanonical()
	if err != nil {
		return "", "", fmt.Errorf("marshal transaction log: %w", err)
	}
	hash, err = format.TransactionLogHash(log)
	if err != nil {
		return "", "", fmt.Errorf("hash transaction log: %w", err)
	}
	return string(data), hash, nil
}

// unmarshalLog parses a stored log and checks it against the stored hash.
// A mismatch means the row was edited outside the store.
func unmarshalLog(body, wantHash string) (*format.TransactionLog, error) {
	log, err := format.DecodeTransactionLog([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("unmarshal transaction log: %w", err)
	}
	got, err := format.TransactionLogHash(log)
	if err != nil {
		return nil, fmt.Errorf("hash transaction log: %w", err)
	}
	if got != wantHash {
		return nil, fmt.Errorf("transaction log hash mismatch: stored %s, computed %s", wantHash, got)
	}
	return log, nil
}

// nullableID maps the empty id of a root snapshot to SQL NULL.
func nullableID(id format.SnapshotID) any {
	if id == "" {
		return nil
	}
	return string(id)
}
