package media

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"spurt/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// s3API is the subset of *s3.Client used by s3Host.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Host implements service.MediaHost with the AWS SDK, for AWS or an S3 compatible store like MinIO.
type s3Host struct {
	client        s3API
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// NewS3Host builds the S3 client from static credentials when given, the default chain otherwise.
func NewS3Host(ctx context.Context, cfg config.S3Config, publicBaseURL string, logger *slog.Logger) (*s3Host, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media.s3.bucket is required for the s3 provider")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	if publicBaseURL == "" && cfg.Endpoint != "" {
		publicBaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return newS3Host(client, cfg.Bucket, publicBaseURL, logger), nil
}

func newS3Host(client s3API, bucket, publicBaseURL string, logger *slog.Logger) *s3Host {
	return &s3Host{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Upload puts the object under a fresh key.
func (h *s3Host) Upload(ctx context.Context, fileName string, r io.Reader) (string, string, error) {
	key := newObjectKey(fileName)

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType(fileName)),
	})
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to put object %s", key)
	}

	h.logger.Debug("Photo uploaded to S3", slog.String("bucket", h.bucket), slog.String("key", key))

	return publicURI(h.publicBaseURL, key), key, nil
}

// Delete removes the object. S3 reports success for keys that do not exist.
func (h *s3Host) Delete(ctx context.Context, publicID string) error {
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete object %s", publicID)
	}

	return nil
}
