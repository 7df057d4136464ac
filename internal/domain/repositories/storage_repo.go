package repositories

import "context"

type PublishOptions struct {
	Bucket            string
	KeyPrefix         string
	PreserveStructure bool
}

// PublishResult reports a best-effort batch upload. Failed uploads do
// not abort their siblings; callers inspect MasterUploaded before
// exposing a manifest URL.
type PublishResult struct {
	UploadedKeys   []string
	FailedKeys     []string
	MasterUploaded bool
}

// ObjectStorage publishes a local directory tree to object storage.
// The local directory is removed after the attempt regardless of the
// outcome.
type ObjectStorage interface {
	PublishDir(ctx context.Context, localDir string, opts PublishOptions) (*PublishResult, error)
}
