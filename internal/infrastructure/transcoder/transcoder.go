package transcoder

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vod-pipeline/internal/domain/repositories"
)

// Transcoder orchestrates probe -> ladder -> parallel encodes ->
// master playlist. It owns its output directory: on any failure the
// partial tree is removed before the error is returned. Retrying is
// the caller's business.
type Transcoder struct {
	prober  Prober
	encoder RenditionEncoder
	tempDir string
	log     *logrus.Logger
}

func NewTranscoder(prober Prober, encoder RenditionEncoder, tempDir string, log *logrus.Logger) *Transcoder {
	return &Transcoder{
		prober:  prober,
		encoder: encoder,
		tempDir: tempDir,
		log:     log,
	}
}

func (t *Transcoder) Transcode(ctx context.Context, sourceURL string) (*repositories.TranscodeResult, error) {
	if err := t.prober.CheckReachable(ctx, sourceURL); err != nil {
		return nil, err
	}

	info, err := t.prober.Probe(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	ladder, err := PlanLadder(*info)
	if err != nil {
		return nil, err
	}

	outputDir := filepath.Join(t.tempDir, "hls_"+uuid.New().String())
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	names := make([]string, len(ladder))
	for i, r := range ladder {
		names[i] = r.Name
	}
	t.log.WithFields(logrus.Fields{
		"source":     sourceURL,
		"renditions": names,
		"output_dir": outputDir,
	}).Info("starting transcode")

	if err := t.encodeAll(ctx, sourceURL, ladder, outputDir); err != nil {
		t.discard(outputDir)
		return nil, err
	}

	masterPath, err := WriteMasterPlaylist(outputDir, ladder)
	if err != nil {
		t.discard(outputDir)
		return nil, err
	}

	return &repositories.TranscodeResult{
		OutputDir:       outputDir,
		MasterPath:      masterPath,
		DurationSeconds: int64(math.Round(info.DurationSeconds)),
	}, nil
}

// encodeAll fans one goroutine out per rendition and waits for all of
// them. Siblings of a failed encode run to completion; the first
// failure in ladder order is the one reported.
func (t *Transcoder) encodeAll(ctx context.Context, sourceURL string, ladder []Rendition, outputDir string) error {
	var wg sync.WaitGroup
	encodeErrs := make([]error, len(ladder))

	for i, rendition := range ladder {
		wg.Add(1)
		go func(idx int, r Rendition) {
			defer wg.Done()
			encodeErrs[idx] = t.encoder.Encode(ctx, sourceURL, r, outputDir)
		}(i, rendition)
	}
	wg.Wait()

	for _, err := range encodeErrs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Transcoder) discard(outputDir string) {
	if err := os.RemoveAll(outputDir); err != nil {
		t.log.Warnf("could not remove partial output %s: %v", outputDir, err)
	}
}
