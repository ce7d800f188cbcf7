package cartoon

import "errors"

// Error classes returned by the pipeline. Returned errors wrap one of these
// and carry the offending value; match them with errors.Is.
var (
	// ErrInvalidParameter reports a kernel size that is even or below 3, or a
	// palette size outside [2, H*W].
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidImage reports a nil, empty or single-channel input image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrProcessing reports a numeric failure inside a stage.
	ErrProcessing = errors.New("processing failed")
)
