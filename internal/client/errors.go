package client

import "errors"

var (
	ErrSegmentCountMismatch = errors.New("client: full_segments.len != total_segments")
	ErrUnknownSnakeSamples  = errors.New("client: validation samples for unknown snake")
	ErrSampleSizeMismatch   = errors.New("client: sample count mismatch")
)
