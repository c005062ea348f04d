package pipeline

import "errors"

// Error kinds surfaced to the request boundary. Internal failures are
// mapped onto exactly one of these before returning; callers match
// with errors.Is.
var (
	ErrConfig     = errors.New("configuration error")
	ErrValidation = errors.New("validation error")
	ErrRetrieval  = errors.New("retrieval error")
	ErrGeneration = errors.New("generation error")
	ErrTool       = errors.New("tool error")
	ErrStorage    = errors.New("storage error")
)
