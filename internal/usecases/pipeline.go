package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"vod-pipeline/internal/domain/repositories"
	"vod-pipeline/internal/infrastructure/queue"
	"vod-pipeline/internal/infrastructure/transcoder"
	"vod-pipeline/pkg/constants"
	"vod-pipeline/pkg/errors"
)

// PipelineService is the job orchestrator: it drives one content from
// a delivered job to ready or failed. Modeled transcoding failures are
// terminal and consume the delivery; anything else is returned to the
// queue so its retry budget applies.
type PipelineService struct {
	contents   repositories.ContentRepository
	transcoder repositories.VideoTranscoder
	storage    repositories.ObjectStorage
	bucket     string
	publicURL  string
	log        *logrus.Logger
}

func NewPipelineService(
	contents repositories.ContentRepository,
	videoTranscoder repositories.VideoTranscoder,
	storage repositories.ObjectStorage,
	bucket, publicURL string,
	log *logrus.Logger,
) *PipelineService {
	return &PipelineService{
		contents:   contents,
		transcoder: videoTranscoder,
		storage:    storage,
		bucket:     bucket,
		publicURL:  strings.TrimRight(publicURL, "/"),
		log:        log,
	}
}

func (s *PipelineService) ProcessContent(ctx context.Context, job queue.ContentJob) error {
	log := s.log.WithFields(logrus.Fields{
		"content_id": job.ContentID,
		"attempt":    job.Attempt,
	})

	content, err := s.contents.GetContentByID(job.ContentID)
	if err != nil {
		return fmt.Errorf("load content %s: %w", job.ContentID, err)
	}

	// At-least-once delivery: a redelivered job for a finished content
	// is acknowledged without doing any work again.
	if constants.IsTerminal(content.Status) {
		log.WithField("status", content.Status).Info("content already terminal, ignoring delivery")
		return nil
	}

	// A row can already be processing when a previous attempt died
	// mid-flight; only the pending -> processing edge is written here.
	if content.Status == constants.StatusPending {
		if err := s.contents.MarkProcessing(job.ContentID); err != nil {
			return fmt.Errorf("mark processing: %w", err)
		}
	}

	result, err := s.transcoder.Transcode(ctx, content.LocationURL)
	if err != nil {
		if errors.IsTranscodeFailure(err) {
			// Unsupported or broken source: retrying cannot help, the
			// job ends here with a failed content.
			log.Warnf("transcode failed terminally: %v", err)
			if markErr := s.contents.MarkFailed(job.ContentID); markErr != nil {
				return fmt.Errorf("mark failed: %w", markErr)
			}
			return nil
		}
		return fmt.Errorf("transcode content %s: %w", job.ContentID, err)
	}

	// Measure the tree before publication deletes it.
	sizeInBytes, sizeErr := transcoder.TreeSize(result.OutputDir)
	if sizeErr != nil {
		log.Warnf("could not measure rendition tree: %v", sizeErr)
		sizeInBytes = constants.MetricUnknown
	}

	publish, err := s.storage.PublishDir(ctx, result.OutputDir, repositories.PublishOptions{
		Bucket:            s.bucket,
		KeyPrefix:         job.ContentID,
		PreserveStructure: true,
	})
	if err != nil {
		return fmt.Errorf("publish content %s: %w", job.ContentID, err)
	}
	if !publish.MasterUploaded {
		// Rendition files without a reachable manifest are not
		// playable; leave the row processing and let the queue retry.
		return errors.ErrPublish(fmt.Errorf("master playlist not uploaded for content %s", job.ContentID))
	}
	if len(publish.FailedKeys) > 0 {
		log.Warnf("%d objects failed to upload: %v", len(publish.FailedKeys), publish.FailedKeys)
	}

	streamURL := fmt.Sprintf("%s/%s/%s/%s", s.publicURL, s.bucket, job.ContentID, transcoder.MasterPlaylistName)
	if err := s.contents.MarkReady(job.ContentID, streamURL, sizeInBytes, result.DurationSeconds); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}

	log.WithField("stream_url", streamURL).Info("content ready")
	return nil
}
