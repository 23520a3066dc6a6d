package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrInvalid
	ErrParseFailed
	ErrLimitExceeded
	ErrSnapshotMissing
	ErrChunkMissing
	ErrDependencyUnsatisfied
	ErrChecksumMismatch
	ErrInternal
)
