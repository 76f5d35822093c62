package usecase

import (
	"context"
	"io"

	"spurt/internal/domain/entity"
)

// UploadPhotoInput describes one uploaded image file.
type UploadPhotoInput struct {
	EventID  int64
	FileName string
	Size     int64
	Content  io.Reader
}

// PhotoUsecase manages event photos and the single main photo per event.
type PhotoUsecase interface {
	// Upload stores the image on the media host and records it as a non-main photo.
	Upload(ctx context.Context, input *UploadPhotoInput) (*entity.Photo, error)

	// GetMainPhoto returns the main photo of an event, or nil when none is set.
	GetMainPhoto(ctx context.Context, eventID int64) (*entity.Photo, error)

	// SetMain makes newMainID the main photo and clears the previous one in a single transaction.
	// currentMainID is zero when the caller knows of no current main photo.
	SetMain(ctx context.Context, newMainID, currentMainID int64) error

	// Delete removes a non-main photo, deleting its hosted asset first.
	Delete(ctx context.Context, photoID int64) error
}
