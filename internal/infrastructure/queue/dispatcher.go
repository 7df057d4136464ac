package queue

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/pkg/constants"
)

const (
	maxAttempts   = 3
	backoffBaseMS = 1000
)

type Dispatcher struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewDispatcher(rdb *redis.Client, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{rdb: rdb, log: log}
}

// DispatchContentCreated enqueues exactly one job for the new content,
// with the bounded retry policy baked into the payload (3 attempts,
// exponential backoff starting at 1s).
func (d *Dispatcher) DispatchContentCreated(ctx context.Context, event dto.ContentCreated) error {
	job := ContentJob{
		ContentID:   event.Content.ID,
		TitleID:     event.Content.TitleID,
		LocationURL: event.Content.LocationURL,
		Attempt:     1,
		MaxAttempts: maxAttempts,
		BackoffMS:   backoffBaseMS,
	}

	payload, err := SerializeJob(job)
	if err != nil {
		return err
	}

	if err := d.rdb.LPush(ctx, constants.ContentQueue, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue content job %s: %w", job.ContentID, err)
	}

	d.log.WithField("content_id", job.ContentID).Info("content job dispatched")
	return nil
}
