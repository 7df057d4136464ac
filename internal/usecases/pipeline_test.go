package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/internal/domain/entities"
	"vod-pipeline/internal/domain/repositories"
	"vod-pipeline/internal/infrastructure/queue"
	"vod-pipeline/pkg/constants"
	"vod-pipeline/pkg/errors"
)

type fakeContents struct {
	content *dto.ContentDTO
	loadErr error

	processingCalls int
	failedCalls     int
	readyCalls      int
	readyStreamURL  string
	readySize       int64
	readyDuration   int64
	readyErr        error
}

func (f *fakeContents) CreateContent(*entities.Content) error { return nil }

func (f *fakeContents) GetContentByID(id string) (*dto.ContentDTO, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.content, nil
}

func (f *fakeContents) MarkProcessing(id string) error {
	f.processingCalls++
	return nil
}

func (f *fakeContents) MarkFailed(id string) error {
	f.failedCalls++
	return nil
}

func (f *fakeContents) MarkReady(id, streamURL string, sizeInBytes, durationInSeconds int64) error {
	f.readyCalls++
	f.readyStreamURL = streamURL
	f.readySize = sizeInBytes
	f.readyDuration = durationInSeconds
	return f.readyErr
}

type fakeTranscoder struct {
	calls  int
	result *repositories.TranscodeResult
	err    error
}

func (f *fakeTranscoder) Transcode(ctx context.Context, sourceURL string) (*repositories.TranscodeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStorage struct {
	calls  int
	opts   repositories.PublishOptions
	result *repositories.PublishResult
	err    error
}

func (f *fakeStorage) PublishDir(ctx context.Context, localDir string, opts repositories.PublishOptions) (*repositories.PublishResult, error) {
	f.calls++
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func pendingContent(id string) *dto.ContentDTO {
	return &dto.ContentDTO{
		ID:          id,
		LocationURL: "https://media.example.com/source.mp4",
		Status:      constants.StatusPending,
	}
}

// renditionDir lays out a minimal output tree with a known total size
// so the metric measurement has something real to walk.
func renditionDir(t *testing.T, totalBytes int) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "master.m3u8"), make([]byte, totalBytes), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestProcessContentSuccess(t *testing.T) {
	outputDir := renditionDir(t, 1024)
	contents := &fakeContents{content: pendingContent("c1")}
	trans := &fakeTranscoder{result: &repositories.TranscodeResult{
		OutputDir:       outputDir,
		MasterPath:      filepath.Join(outputDir, "master.m3u8"),
		DurationSeconds: 43,
	}}
	storage := &fakeStorage{result: &repositories.PublishResult{MasterUploaded: true}}

	svc := NewPipelineService(contents, trans, storage, "streams", "http://cdn.example.com/", quietLogger())
	if err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1", Attempt: 1}); err != nil {
		t.Fatalf("ProcessContent: %v", err)
	}

	if contents.processingCalls != 1 {
		t.Errorf("MarkProcessing called %d times, want 1", contents.processingCalls)
	}
	if contents.readyCalls != 1 {
		t.Fatalf("MarkReady called %d times, want 1", contents.readyCalls)
	}
	if want := "http://cdn.example.com/streams/c1/master.m3u8"; contents.readyStreamURL != want {
		t.Errorf("stream URL = %s, want %s", contents.readyStreamURL, want)
	}
	if contents.readySize != 1024 {
		t.Errorf("size = %d, want 1024", contents.readySize)
	}
	if contents.readyDuration != 43 {
		t.Errorf("duration = %d, want 43", contents.readyDuration)
	}
	if storage.opts.KeyPrefix != "c1" || !storage.opts.PreserveStructure {
		t.Errorf("publish opts = %+v", storage.opts)
	}
}

func TestProcessContentTerminalTranscodeFailure(t *testing.T) {
	contents := &fakeContents{content: pendingContent("c1")}
	trans := &fakeTranscoder{err: errors.ErrNoEligibleRendition(200)}
	storage := &fakeStorage{}

	svc := NewPipelineService(contents, trans, storage, "streams", "http://cdn", quietLogger())
	// A terminal source problem consumes the delivery: no error back to
	// the queue, the content is failed.
	if err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1"}); err != nil {
		t.Fatalf("terminal failure should not be returned, got %v", err)
	}
	if contents.failedCalls != 1 {
		t.Errorf("MarkFailed called %d times, want 1", contents.failedCalls)
	}
	if storage.calls != 0 {
		t.Error("nothing should be published after a failed transcode")
	}
}

func TestProcessContentPublishFailureIsRetryable(t *testing.T) {
	outputDir := renditionDir(t, 10)
	contents := &fakeContents{content: pendingContent("c1")}
	trans := &fakeTranscoder{result: &repositories.TranscodeResult{OutputDir: outputDir, DurationSeconds: 1}}
	storage := &fakeStorage{err: errors.ErrPublish(fmt.Errorf("endpoint unreachable"))}

	svc := NewPipelineService(contents, trans, storage, "streams", "http://cdn", quietLogger())
	err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1"})
	if err == nil {
		t.Fatal("publish failure must be returned for retry")
	}
	if contents.failedCalls != 0 || contents.readyCalls != 0 {
		t.Error("row must stay processing on a retryable failure")
	}
}

func TestProcessContentMasterNotUploaded(t *testing.T) {
	outputDir := renditionDir(t, 10)
	contents := &fakeContents{content: pendingContent("c1")}
	trans := &fakeTranscoder{result: &repositories.TranscodeResult{OutputDir: outputDir, DurationSeconds: 1}}
	storage := &fakeStorage{result: &repositories.PublishResult{
		UploadedKeys:   []string{"c1/360p/segment_000.ts"},
		FailedKeys:     []string{"c1/master.m3u8"},
		MasterUploaded: false,
	}}

	svc := NewPipelineService(contents, trans, storage, "streams", "http://cdn", quietLogger())
	err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1"})
	if err == nil {
		t.Fatal("missing master upload must be returned for retry")
	}
	pipeErr, ok := errors.AsPipelineError(err)
	if !ok || pipeErr.Code != errors.CodePublish {
		t.Fatalf("want publish error, got %v", err)
	}
	if contents.readyCalls != 0 {
		t.Error("content must not be ready without its master playlist")
	}
}

func TestProcessContentIdempotentOnTerminalStatus(t *testing.T) {
	for _, status := range []string{constants.StatusReady, constants.StatusFailed} {
		t.Run(status, func(t *testing.T) {
			content := pendingContent("c1")
			content.Status = status
			contents := &fakeContents{content: content}
			trans := &fakeTranscoder{}

			svc := NewPipelineService(contents, trans, &fakeStorage{}, "streams", "http://cdn", quietLogger())
			if err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1"}); err != nil {
				t.Fatalf("redelivery for %s content: %v", status, err)
			}
			if trans.calls != 0 {
				t.Error("redelivered terminal content must not be transcoded again")
			}
			if contents.processingCalls != 0 || contents.failedCalls != 0 || contents.readyCalls != 0 {
				t.Error("redelivered terminal content must not change state")
			}
		})
	}
}

func TestProcessContentSkipsProcessingEdgeWhenAlreadyProcessing(t *testing.T) {
	outputDir := renditionDir(t, 10)
	content := pendingContent("c1")
	content.Status = constants.StatusProcessing
	contents := &fakeContents{content: content}
	trans := &fakeTranscoder{result: &repositories.TranscodeResult{OutputDir: outputDir, DurationSeconds: 7}}
	storage := &fakeStorage{result: &repositories.PublishResult{MasterUploaded: true}}

	svc := NewPipelineService(contents, trans, storage, "streams", "http://cdn", quietLogger())
	if err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1", Attempt: 2}); err != nil {
		t.Fatalf("ProcessContent: %v", err)
	}
	if contents.processingCalls != 0 {
		t.Error("row already processing, the pending edge must not be rewritten")
	}
	if contents.readyCalls != 1 {
		t.Error("retried job should still finish")
	}
}

func TestProcessContentLoadFailureIsRetryable(t *testing.T) {
	contents := &fakeContents{loadErr: stderrors.New("connection refused")}
	svc := NewPipelineService(contents, &fakeTranscoder{}, &fakeStorage{}, "streams", "http://cdn", quietLogger())
	if err := svc.ProcessContent(context.Background(), queue.ContentJob{ContentID: "c1"}); err == nil {
		t.Fatal("database failure must be returned for retry")
	}
}
