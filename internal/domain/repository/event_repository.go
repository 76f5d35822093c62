package repository

import (
	"context"
	"errors"

	"spurt/internal/domain/entity"
)

// ErrEventNotFound is returned when no event matches the lookup.
var ErrEventNotFound = errors.New("event not found")

// EventRepository persists events together with their photo galleries.
type EventRepository interface {
	// Create persists a new event and fills in its generated id.
	Create(ctx context.Context, event *entity.Event) error

	// FindByID retrieves an event with its images.
	FindByID(ctx context.Context, id int64) (*entity.Event, error)

	// List retrieves all events with their images, oldest first.
	List(ctx context.Context) ([]*entity.Event, error)

	// Exists reports whether an event with the given id is stored.
	Exists(ctx context.Context, id int64) (bool, error)
}
