package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContentJob is the unit of work carried over redis. It references the
// content row and carries its own retry bookkeeping, so a consumer
// needs no external state to decide whether a failed delivery gets
// another attempt.
type ContentJob struct {
	ContentID   string `json:"content_id"`
	TitleID     string `json:"title_id"`
	LocationURL string `json:"location_url"`

	Attempt     int   `json:"attempt"` // 1-based delivery attempt
	MaxAttempts int   `json:"max_attempts"`
	BackoffMS   int64 `json:"backoff_ms"` // base delay, doubled per attempt
}

// Backoff returns the delay before the next delivery: base * 2^(n-1)
// for the n-th completed attempt.
func (j ContentJob) Backoff() time.Duration {
	delay := time.Duration(j.BackoffMS) * time.Millisecond
	for i := 1; i < j.Attempt; i++ {
		delay *= 2
	}
	return delay
}

func SerializeJob(job ContentJob) (string, error) {
	bytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	return string(bytes), nil
}

func DeserializeJob(data string) (*ContentJob, error) {
	var job ContentJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to deserialize job: %w", err)
	}
	return &job, nil
}
