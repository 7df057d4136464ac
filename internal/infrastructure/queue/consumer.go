package queue

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"vod-pipeline/pkg/constants"
)

// JobHandler processes one delivered job. A nil return consumes the
// delivery; an error puts the job back on the queue until its retry
// budget runs out.
type JobHandler interface {
	ProcessContent(ctx context.Context, job ContentJob) error
}

type Consumer struct {
	rdb     *redis.Client
	handler JobHandler
	log     *logrus.Logger
	wg      sync.WaitGroup
}

func NewConsumer(rdb *redis.Client, handler JobHandler, log *logrus.Logger) *Consumer {
	return &Consumer{rdb: rdb, handler: handler, log: log}
}

// Start launches workerCount BRPOP loops. Each worker pops, decodes
// and processes one job at a time; concurrency within a job lives in
// the pipeline, not here.
func (c *Consumer) Start(ctx context.Context, workerCount int) {
	if workerCount < 1 {
		workerCount = 1
	}
	for i := 0; i < workerCount; i++ {
		c.wg.Add(1)
		go c.run(ctx, i)
	}
}

func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) run(ctx context.Context, workerID int) {
	defer c.wg.Done()
	log := c.log.WithField("worker", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return
		default:
		}

		val, err := c.rdb.BRPop(ctx, 5*time.Second, constants.ContentQueue).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping")
				return
			}
			log.Errorf("BRPop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		job, err := DeserializeJob(val[1])
		if err != nil {
			log.Errorf("dropping undecodable job: %v", err)
			continue
		}

		if handleErr := c.handler.ProcessContent(ctx, *job); handleErr != nil {
			c.retry(*job, handleErr)
		}
	}
}

// retry re-enqueues a failed delivery after its backoff, until the
// attempt budget is exhausted.
func (c *Consumer) retry(job ContentJob, cause error) {
	log := c.log.WithFields(logrus.Fields{
		"content_id": job.ContentID,
		"attempt":    job.Attempt,
	})

	if job.Attempt >= job.MaxAttempts {
		log.Errorf("retry budget exhausted, dropping job: %v", cause)
		return
	}

	delay := job.Backoff()
	job.Attempt++

	payload, err := SerializeJob(job)
	if err != nil {
		log.Errorf("could not serialize retry: %v", err)
		return
	}

	log.Warnf("delivery failed, retrying in %s: %v", delay, cause)
	time.AfterFunc(delay, func() {
		if err := c.rdb.LPush(context.Background(), constants.ContentQueue, payload).Err(); err != nil {
			log.Errorf("could not re-enqueue job: %v", err)
		}
	})
}
