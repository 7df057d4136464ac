package repositories

import (
	"context"

	"vod-pipeline/internal/domain/dto"
)

// JobDispatcher enqueues the processing job for a freshly created
// content. Enqueue failures surface to the caller; the creating flow
// decides what to do with them.
type JobDispatcher interface {
	DispatchContentCreated(ctx context.Context, event dto.ContentCreated) error
}
