package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"freightdesk/quote/internal/config"
	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
)

// recipientsMetadataKey is the user metadata entry listing who to notify, comma separated.
const recipientsMetadataKey = "recipients"

// IFileEventSource lists "file ready" events produced by an external system.
type IFileEventSource interface {
	ListReady(ctx context.Context, since time.Time) ([]models.FileEvent, error)
}

// s3API is the subset of the S3 client used here.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// s3FileEventSource implements IFileEventSource over objects under a bucket prefix.
type s3FileEventSource struct {
	bucket string
	prefix string
	client s3API
}

// NewS3FileEventSource creates a new S3-backed file event source.
func NewS3FileEventSource(ctx context.Context, cfg *config.Config) (IFileEventSource, error) {
	if cfg.AwsS3Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is not configured")
	}
	opts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3FileEventSource(s3.NewFromConfig(awsCfg), cfg.AwsS3Bucket, cfg.FilesPrefix), nil
}

func newS3FileEventSource(client s3API, bucket, prefix string) *s3FileEventSource {
	return &s3FileEventSource{bucket: bucket, prefix: prefix, client: client}
}

// ListReady returns one event per object modified at or after since.
// Objects whose metadata cannot be read are logged and skipped.
func (s *s3FileEventSource) ListReady(ctx context.Context, since time.Time) ([]models.FileEvent, error) {
	var events []models.FileEvent
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			modified := aws.ToTime(obj.LastModified)
			if strings.HasSuffix(key, "/") || modified.Before(since) {
				continue
			}
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				logger.Warn(ctx, "failed to read file event metadata", "key", key, "error", err)
				continue
			}
			events = append(events, models.FileEvent{
				ExternalID: ExternalIDFromKey(key),
				Key:        key,
				Recipients: splitRecipients(head.Metadata[recipientsMetadataKey]),
				ReadyAt:    modified,
			})
		}
	}
	return events, nil
}

// ExternalIDFromKey derives the event id from the object's base name without extension.
func ExternalIDFromKey(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

func splitRecipients(raw string) []string {
	var out []string
	for _, r := range strings.FieldsFunc(raw, func(c rune) bool { return c == ',' || c == ';' || c == ' ' }) {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			out = append(out, r)
		}
	}
	return out
}
