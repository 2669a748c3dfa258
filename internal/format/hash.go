package format

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTransactionLog separates transaction log hashes from any other
// content-addressed value. The version suffix allows a future algorithm change.
const DomainTransactionLog = "arrayvc/txlog/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TransactionLogHash returns the content hash of the log's canonical encoding.
// Equal logs always hash equal.
func TransactionLogHash(l *TransactionLog) (string, error) {
	data, err := l.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("TransactionLogHash: %w", err)
	}
	return hashWithDomain(DomainTransactionLog, data), nil
}

// MustTransactionLogHash is like TransactionLogHash but panics on error.
// Use only in tests or when the log is known to be valid.
func MustTransactionLogHash(l *TransactionLog) string {
	h, err := TransactionLogHash(l)
	if err != nil {
		panic(err)
	}
	return h
}
