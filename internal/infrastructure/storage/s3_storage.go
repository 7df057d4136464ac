package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"vod-pipeline/internal/domain/repositories"
	appconfig "vod-pipeline/internal/pkg/config"
	"vod-pipeline/pkg/errors"
)

// s3API is the slice of the S3 client the publisher needs; it keeps
// the publisher testable without a live endpoint.
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Publisher struct {
	client s3API
	log    *logrus.Logger
}

// NewS3Publisher builds a publisher against any S3-compatible endpoint
// (MinIO included: static credentials, path-style addressing).
func NewS3Publisher(cfg appconfig.StorageConfig, log *logrus.Logger) (*S3Publisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("could not load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Publisher{client: client, log: log}, nil
}

// PublishDir uploads every file under localDir concurrently and then
// removes localDir. The removal is unconditional: it runs whether the
// uploads succeeded or not, so failed jobs do not grow local disk.
func (p *S3Publisher) PublishDir(ctx context.Context, localDir string, opts repositories.PublishOptions) (*repositories.PublishResult, error) {
	defer func() {
		if err := os.RemoveAll(localDir); err != nil {
			p.log.Warnf("could not remove local dir %s: %v", localDir, err)
		}
	}()

	info, err := os.Stat(localDir)
	if err != nil || !info.IsDir() {
		return nil, errors.ErrPublish(fmt.Errorf("%s is not a directory", localDir))
	}

	if err := p.ensureBucket(ctx, opts.Bucket); err != nil {
		return nil, errors.ErrPublish(err)
	}

	files, err := collectFiles(localDir)
	if err != nil {
		return nil, errors.ErrPublish(fmt.Errorf("enumerate %s: %w", localDir, err))
	}

	result := &repositories.PublishResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, file := range files {
		key, keyErr := objectKey(localDir, file, opts)
		if keyErr != nil {
			mu.Lock()
			result.FailedKeys = append(result.FailedKeys, file)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(localPath, key string) {
			defer wg.Done()
			uploadErr := p.putFile(ctx, opts.Bucket, key, localPath)

			mu.Lock()
			defer mu.Unlock()
			if uploadErr != nil {
				// Best-effort batch: a failed sibling does not abort
				// the others, it is just recorded.
				p.log.WithField("key", key).Errorf("upload failed: %v", uploadErr)
				result.FailedKeys = append(result.FailedKeys, key)
				return
			}
			result.UploadedKeys = append(result.UploadedKeys, key)
			if filepath.Base(localPath) == "master.m3u8" {
				result.MasterUploaded = true
			}
		}(file, key)
	}
	wg.Wait()

	p.log.WithFields(logrus.Fields{
		"bucket":   opts.Bucket,
		"prefix":   opts.KeyPrefix,
		"uploaded": len(result.UploadedKeys),
		"failed":   len(result.FailedKeys),
	}).Info("publish finished")

	return result, nil
}

func (p *S3Publisher) ensureBucket(ctx context.Context, bucket string) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	if _, err := p.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("could not create bucket %s: %w", bucket, err)
	}
	return nil
}

func (p *S3Publisher) putFile(ctx context.Context, bucket, key, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentTypeFor(localPath)),
	})
	return err
}

// objectKey computes the destination key: prefix/relative-path when
// the directory structure is preserved, prefix/basename when flattened.
func objectKey(baseDir, file string, opts repositories.PublishOptions) (string, error) {
	var name string
	if opts.PreserveStructure {
		rel, err := filepath.Rel(baseDir, file)
		if err != nil {
			return "", err
		}
		name = rel
	} else {
		name = filepath.Base(file)
	}

	key := filepath.ToSlash(filepath.Join(opts.KeyPrefix, name))
	return strings.TrimPrefix(key, "/"), nil
}

func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	default:
		return "application/octet-stream"
	}
}
