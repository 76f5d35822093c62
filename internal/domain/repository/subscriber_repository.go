package repository

import (
	"context"
	"errors"

	"spurt/internal/domain/entity"
)

// ErrDuplicateSubscriber is returned when the email is already subscribed.
var ErrDuplicateSubscriber = errors.New("subscriber already exists")

// SubscriberRepository persists newsletter subscribers.
type SubscriberRepository interface {
	// Create persists a new subscriber.
	Create(ctx context.Context, subscriber *entity.Subscriber) error
}

// UniquenessRepository answers existence checks for entities with a natural unique key.
type UniquenessRepository interface {
	// EntityExists reports whether a stored record already holds candidate's unique key.
	// Users compare by email ignoring case; subscribers compare by exact email.
	EntityExists(ctx context.Context, candidate entity.UniquenessCheckable) (bool, error)
}
