package myErrors

import "errors"

var (
	ErrTablesUnavailable = errors.New("cipher tables are not initialized")
	ErrTableMissing      = errors.New("table is missing")
	ErrMalformedTable    = errors.New("table is malformed")

	ErrKeySize         = errors.New("invalid key size")
	ErrIVSize          = errors.New("invalid iv size")
	ErrBlockAlignment  = errors.New("data length must be a multiple of the block size")
	ErrEmptyData       = errors.New("data cannot be empty")
	ErrInvalidEnvelope = errors.New("invalid envelope")

	ErrEnvelopeNotFound = errors.New("envelope not found")
	ErrUnknownTransport = errors.New("unknown envelope transport")

	ErrOutOfOrder   = errors.New("block arrived out of order")
	ErrStageAborted = errors.New("pipeline stage aborted")
)
