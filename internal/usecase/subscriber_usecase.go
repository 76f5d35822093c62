package usecase

import (
	"context"

	"spurt/internal/domain/entity"
)

// SubscriberUsecase manages newsletter subscriptions.
type SubscriberUsecase interface {
	Subscribe(ctx context.Context, email string) (*entity.Subscriber, error)
}
