package gpucore

import "errors"

// Fatal device errors. A processing instance that hits one of these is
// disabled for good; none of them is retried.
var (
	// ErrNoGraphicsCapability is returned when no rendering context could
	// be acquired from any candidate.
	ErrNoGraphicsCapability = errors.New("chromakey: no graphics capability")

	// ErrCompileFailed is returned when a shader stage does not compile.
	ErrCompileFailed = errors.New("chromakey: shader compile failed")

	// ErrLinkFailed is returned when the vertex and fragment stages cannot
	// be linked into one program.
	ErrLinkFailed = errors.New("chromakey: program link failed")
)
