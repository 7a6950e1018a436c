package clients

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3Config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/prolibrary/config"
)

var ErrBucketNotConfigured = errors.New("s3 bucket is not configured")

// NewS3Client configures a new AWS S3 object storage client. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies.
func NewS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	opts := []func(*s3Config.LoadOptions) error{s3Config.WithRegion(cfg.S3.Region)}
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")
		opts = append(opts, s3Config.WithCredentialsProvider(creds))
	}
	awsCfg, err := s3Config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

// S3Exporter stores rendered catalog exports in a bucket.
type S3Exporter struct {
	uploader *manager.Uploader
	bucket   string
}

// NewS3Exporter returns an exporter writing to bucket through client.
func NewS3Exporter(client manager.UploadAPIClient, bucket string) (*S3Exporter, error) {
	if bucket == "" {
		return nil, ErrBucketNotConfigured
	}
	return &S3Exporter{uploader: manager.NewUploader(client), bucket: bucket}, nil
}

// Upload stores body under key and returns the object's s3:// URI.
func (e *S3Exporter) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", e.bucket, key), nil
}
