package domain

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Every stage reports failure through one of these
// sentinels (possibly wrapped); callers classify with errors.Is and the API
// layer translates them into status codes. Stages never panic across the
// pipeline boundary.
var (
	// ErrNotFound indicates the video has no underlying content to work with:
	// zero comments, or no usable caption track.
	ErrNotFound = errors.New("no content available")

	// ErrEmptyAfterFiltering indicates content existed but every item was
	// rejected by the cleaning filters.
	ErrEmptyAfterFiltering = errors.New("no valid content after filtering")

	// ErrUpstreamFailure indicates a transport or service error talking to
	// the video platform, the embedding service, or the completion service.
	ErrUpstreamFailure = errors.New("upstream service failure")

	// ErrGenerationEmpty indicates the language model returned a blank
	// response after trimming.
	ErrGenerationEmpty = errors.New("model returned empty output")
)

// StageError wraps a pipeline error with the name of the stage that produced
// it. Downstream stages forward it unchanged rather than re-wrapping.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// WrapStage tags err with the stage name, unless err already carries a stage
// tag from further upstream.
func WrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}

	var se *StageError
	if errors.As(err, &se) {
		return err
	}

	return &StageError{Stage: stage, Err: err}
}
