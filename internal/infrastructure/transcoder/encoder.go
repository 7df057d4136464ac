package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"vod-pipeline/pkg/errors"
)

const (
	// PlaylistName is the per-rendition playlist filename inside each
	// rendition directory.
	PlaylistName   = "playlist.m3u8"
	segmentPattern = "segment_%03d.ts"
)

// RenditionEncoder converts the source into one segmented rendition
// under outputDir/<rendition name>/.
type RenditionEncoder interface {
	Encode(ctx context.Context, source string, rendition Rendition, outputDir string) error
}

type FFmpegEncoder struct {
	segmentSecs int
	log         *logrus.Logger
}

func NewFFmpegEncoder(segmentSecs int, log *logrus.Logger) *FFmpegEncoder {
	if segmentSecs <= 0 {
		segmentSecs = 6
	}
	return &FFmpegEncoder{segmentSecs: segmentSecs, log: log}
}

// Encode runs one ffmpeg process producing a VOD HLS rendition: fixed
// duration segments plus a bounded playlist. ffmpeg finishes each
// segment before the playlist references it, so a killed process never
// leaves a playlist pointing at a dangling segment.
func (e *FFmpegEncoder) Encode(ctx context.Context, source string, rendition Rendition, outputDir string) error {
	renditionDir := filepath.Join(outputDir, rendition.Name)
	if err := os.MkdirAll(renditionDir, 0o755); err != nil {
		return errors.ErrEncode(rendition.Name, fmt.Errorf("create rendition dir: %w", err))
	}

	playlistPath := filepath.Join(renditionDir, PlaylistName)
	segmentPath := filepath.Join(renditionDir, segmentPattern)

	args := []string{
		"-y",
		"-i", source,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "medium",
		"-crf", "23",
		"-maxrate", fmt.Sprintf("%dk", rendition.Bitrate),
		"-bufsize", fmt.Sprintf("%dk", rendition.Bitrate*2),
		"-vf", fmt.Sprintf("scale=%d:%d", rendition.Width, rendition.Height),
		"-hls_time", fmt.Sprintf("%d", e.segmentSecs),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", segmentPath,
		"-f", "hls",
		playlistPath,
	}

	e.log.WithFields(logrus.Fields{
		"rendition": rendition.Name,
		"target":    fmt.Sprintf("%dx%d@%dk", rendition.Width, rendition.Height, rendition.Bitrate),
	}).Info("starting rendition encode")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.log.WithField("rendition", rendition.Name).Errorf("ffmpeg failed: %v", err)
		return errors.ErrEncode(rendition.Name, fmt.Errorf("%v: %s", err, tail(stderr.Bytes(), 2048)))
	}

	e.log.WithField("rendition", rendition.Name).Info("rendition encode completed")
	return nil
}

// tail keeps the last n bytes of ffmpeg stderr; the useful part of an
// ffmpeg failure is at the end.
func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
