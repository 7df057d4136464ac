package repositories

import "context"

type TranscodeResult struct {
	OutputDir       string
	MasterPath      string
	DurationSeconds int64
}

// VideoTranscoder turns a source location into a local adaptive-bitrate
// rendition tree plus master playlist. It carries no retry logic; a
// failure is final for the attempt.
type VideoTranscoder interface {
	Transcode(ctx context.Context, sourceURL string) (*TranscodeResult, error)
}
