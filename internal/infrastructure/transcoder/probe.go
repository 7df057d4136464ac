package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/sirupsen/logrus"

	"vod-pipeline/pkg/errors"
)

// VideoInfo is the validated shape of an ffprobe run. Anything the
// prober cannot fill in from the raw JSON is a probe failure, not a
// zero value.
type VideoInfo struct {
	Width           int
	Height          int
	DurationSeconds float64
}

// Prober extracts source dimensions and duration. The source may be a
// remote URL; nothing here assumes a local file.
type Prober interface {
	CheckReachable(ctx context.Context, source string) error
	Probe(ctx context.Context, source string) (*VideoInfo, error)
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type FFprober struct {
	log *logrus.Logger
}

func NewFFprober(log *logrus.Logger) *FFprober {
	return &FFprober{log: log}
}

// CheckReachable decodes one second of the source into a null sink. A
// dead URL or a non-media payload fails here before any rendition work
// is scheduled.
func (p *FFprober) CheckReachable(ctx context.Context, source string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-v", "error", "-t", "1", "-i", source, "-f", "null", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		p.log.WithField("source", source).Warnf("source validation failed: %v", err)
		return errors.ErrProbe(fmt.Errorf("source not accessible: %v: %s", err, stderr.String()))
	}
	return nil
}

func (p *FFprober) Probe(ctx context.Context, source string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		source,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.log.WithField("source", source).Warnf("ffprobe failed: %v", err)
		return nil, errors.ErrProbe(fmt.Errorf("%v: %s", err, stderr.String()))
	}

	info, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"source":   source,
		"width":    info.Width,
		"height":   info.Height,
		"duration": info.DurationSeconds,
	}).Info("probed source")
	return info, nil
}

// parseProbeOutput validates the untyped ffprobe JSON into VideoInfo.
// The first stream with codec_type "video" and both dimensions wins.
func parseProbeOutput(raw []byte) (*VideoInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.ErrProbe(fmt.Errorf("unreadable ffprobe output: %w", err))
	}

	var video *ffprobeStream
	for i := range out.Streams {
		s := out.Streams[i]
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			video = &out.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, errors.ErrProbe(fmt.Errorf("no video stream with dimensions found"))
	}

	duration := 0.0
	if out.Format.Duration != "" {
		parsed, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, errors.ErrProbe(fmt.Errorf("invalid duration %q: %w", out.Format.Duration, err))
		}
		duration = parsed
	}

	return &VideoInfo{
		Width:           video.Width,
		Height:          video.Height,
		DurationSeconds: duration,
	}, nil
}
