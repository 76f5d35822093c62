package repository

import (
	"context"
	"errors"

	"spurt/internal/domain/entity"
)

var (
	// ErrPhotoNotFound is returned when no photo matches the lookup.
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrMainPhotoConflict is returned when a write would leave two main photos on one event.
	ErrMainPhotoConflict = errors.New("event already has a main photo")
)

// PhotoRepository persists event photos.
type PhotoRepository interface {
	// FindByID retrieves a photo by id.
	FindByID(ctx context.Context, id int64) (*entity.Photo, error)

	// FindByIDForUpdate retrieves a photo by id and locks its row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Photo, error)

	// FindMainByEvent retrieves the main photo of an event.
	FindMainByEvent(ctx context.Context, eventID int64) (*entity.Photo, error)

	// Create persists a new photo and fills in its generated id.
	Create(ctx context.Context, photo *entity.Photo) error

	// SetMainFlag updates the main flag of one photo.
	SetMainFlag(ctx context.Context, id int64, isMain bool) error

	// ClearMainFlags unsets the main flag on every photo of an event except keepID.
	ClearMainFlags(ctx context.Context, eventID, keepID int64) (int64, error)

	// Delete removes a photo record.
	Delete(ctx context.Context, id int64) error
}
