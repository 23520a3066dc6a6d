package errors

import "errors"

var (
	ErrInvalid               = errors.New("invalid")
	ErrParse                 = errors.New("parse failed")
	ErrLimitExceeded         = errors.New("size limit exceeded")
	ErrSnapshotMissing       = errors.New("stream snapshot missing")
	ErrChunkMissing          = errors.New("chunk patch missing")
	ErrDependencyUnsatisfied = errors.New("chunk dependency unsatisfied")
	ErrChecksumMismatch      = errors.New("reconstructed text checksum mismatch")
	ErrInternal              = errors.New("internal")
)

func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsLimitExceeded(err error) bool {
	return errors.Is(err, ErrLimitExceeded)
}

func IsDependencyUnsatisfied(err error) bool {
	return errors.Is(err, ErrDependencyUnsatisfied)
}
