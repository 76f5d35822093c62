package service

import (
	"context"
	"io"
)

// MediaHost stores uploaded images outside the database.
type MediaHost interface {
	// Upload stores the content read from r and returns its public URI and the
	// identifier needed to delete it later.
	Upload(ctx context.Context, fileName string, r io.Reader) (uri, publicID string, err error)

	// Delete removes the asset identified by publicID.
	Delete(ctx context.Context, publicID string) error
}
