package format

// Version constants for persisted formats.
const (
	// TransactionLogFormatV1 is the first transaction log layout.
	TransactionLogFormatV1 uint8 = 1

	// LatestTransactionLogFormat is the version written by this build.
	LatestTransactionLogFormat = TransactionLogFormatV1
)
