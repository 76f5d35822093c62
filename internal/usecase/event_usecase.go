package usecase

import (
	"context"

	"spurt/internal/domain/entity"
)

// CreateEventInput defines the data required to publish an event.
type CreateEventInput struct {
	Title   string
	Details string
}

// EventUsecase defines event publishing and browsing.
type EventUsecase interface {
	CreateEvent(ctx context.Context, input *CreateEventInput) (*entity.Event, error)
	ListEvents(ctx context.Context) ([]*entity.Event, error)
	GetEvent(ctx context.Context, id int64) (*entity.Event, error)

	// EventShareQR returns a PNG QR code encoding the public page of the event.
	EventShareQR(ctx context.Context, id int64) ([]byte, error)
}
