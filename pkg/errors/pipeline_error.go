package errors

import "fmt"

// PipelineError is the modeled failure of a processing stage. Code
// identifies the stage, Rendition is set when the failure belongs to a
// single ladder entry.
type PipelineError struct {
	Code      string
	Message   string
	Rendition string
	Err       error
}

func (e *PipelineError) Error() string {
	prefix := e.Code
	if e.Rendition != "" {
		prefix = fmt.Sprintf("%s[%s]", e.Code, e.Rendition)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

const (
	CodeProbe            = "probe_failed"
	CodeNoRendition      = "no_eligible_rendition"
	CodeEncode           = "encode_failed"
	CodeIncompleteOutput = "incomplete_output"
	CodePublish          = "publish_failed"
)

func ErrProbe(err error) *PipelineError {
	return &PipelineError{Code: CodeProbe, Message: "source has no decodable video stream or is unreachable", Err: err}
}

func ErrNoEligibleRendition(sourceHeight int) *PipelineError {
	return &PipelineError{
		Code:    CodeNoRendition,
		Message: fmt.Sprintf("source height %dp is below the smallest ladder entry", sourceHeight),
	}
}

func ErrEncode(rendition string, err error) *PipelineError {
	return &PipelineError{Code: CodeEncode, Message: "rendition conversion failed", Rendition: rendition, Err: err}
}

func ErrIncompleteOutput(rendition string) *PipelineError {
	return &PipelineError{
		Code:      CodeIncompleteOutput,
		Message:   "rendition playlist missing after encode",
		Rendition: rendition,
	}
}

func ErrPublish(err error) *PipelineError {
	return &PipelineError{Code: CodePublish, Message: "object storage publication failed", Err: err}
}

// IsTranscodeFailure reports whether err is one of the modeled
// transcoding failures that end the job without a retry. Publish
// failures are excluded: those may be a storage blip and stay
// retryable.
func IsTranscodeFailure(err error) bool {
	pe, ok := AsPipelineError(err)
	if !ok {
		return false
	}
	switch pe.Code {
	case CodeProbe, CodeNoRendition, CodeEncode, CodeIncompleteOutput:
		return true
	}
	return false
}

// AsPipelineError walks the wrap chain for a *PipelineError.
func AsPipelineError(err error) (*PipelineError, bool) {
	for err != nil {
		if pe, ok := err.(*PipelineError); ok {
			return pe, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
