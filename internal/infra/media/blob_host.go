// Package media stores event photos on a remote object host.
package media

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Register the bucket URL schemes accepted in media.bucketUrl.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

const objectPrefix = "events"

// blobHost implements service.MediaHost on a gocloud bucket.
type blobHost struct {
	bucket        *blob.Bucket
	publicBaseURL string
	logger        *slog.Logger
}

// NewBlobHost opens the bucket behind bucketURL (mem://, file:///dir, s3://bucket?region=...).
func NewBlobHost(ctx context.Context, bucketURL, publicBaseURL string, logger *slog.Logger) (*blobHost, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	return &blobHost{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Upload writes the content under a fresh key and returns its public URI and the key.
func (h *blobHost) Upload(ctx context.Context, fileName string, r io.Reader) (string, string, error) {
	key := newObjectKey(fileName)

	opts := &blob.WriterOptions{ContentType: contentType(fileName)}
	if err := h.bucket.Upload(ctx, key, r, opts); err != nil {
		return "", "", errors.Wrapf(err, "failed to upload %s", key)
	}

	h.logger.Debug("Photo uploaded to bucket", slog.String("key", key))

	return publicURI(h.publicBaseURL, key), key, nil
}

// Delete removes the object. A missing object counts as deleted.
func (h *blobHost) Delete(ctx context.Context, publicID string) error {
	if err := h.bucket.Delete(ctx, publicID); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			h.logger.Warn("Photo already absent from bucket", slog.String("key", publicID))

			return nil
		}

		return errors.Wrapf(err, "failed to delete %s", publicID)
	}

	return nil
}

// Close releases the bucket.
func (h *blobHost) Close() error {
	return h.bucket.Close()
}

func newObjectKey(fileName string) string {
	return path.Join(objectPrefix, uuid.New().String()+strings.ToLower(filepath.Ext(fileName)))
}

func contentType(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); ct != "" {
		return ct
	}

	return "application/octet-stream"
}

func publicURI(baseURL, key string) string {
	if baseURL == "" {
		return key
	}

	return baseURL + "/" + key
}
