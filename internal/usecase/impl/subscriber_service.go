package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "spurt/internal/delivery/context"
	"spurt/internal/domain/entity"
	domainerrors "spurt/internal/domain/errors"
	"spurt/internal/domain/repository"
	"spurt/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type subscriberService struct {
	subscriberRepo repository.SubscriberRepository
	uniquenessRepo repository.UniquenessRepository
	logger         *slog.Logger
	now            func() time.Time
}

// SubscriberServiceParams holds dependencies for SubscriberService, injected by Fx.
type SubscriberServiceParams struct {
	fx.In

	SubscriberRepo repository.SubscriberRepository
	UniquenessRepo repository.UniquenessRepository
	Logger         *slog.Logger
}

// NewSubscriberService is the constructor for subscriberService.
func NewSubscriberService(params SubscriberServiceParams) usecase.SubscriberUsecase {
	return &subscriberService{
		subscriberRepo: params.SubscriberRepo,
		uniquenessRepo: params.UniquenessRepo,
		logger:         params.Logger,
		now:            time.Now,
	}
}

func (srv *subscriberService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Subscribe stores email unless it is already subscribed, compared exactly.
func (srv *subscriberService) Subscribe(ctx context.Context, email string) (*entity.Subscriber, error) {
	subscriber := &entity.Subscriber{
		Email:       strings.TrimSpace(email),
		DateCreated: srv.now().UTC(),
	}
	if subscriber.Email == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "email is required")
	}

	exists, err := srv.uniquenessRepo.EntityExists(ctx, subscriber)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to check subscriber")
	}
	if exists {
		return nil, errors.Wrap(domainerrors.ErrSubscriberAlreadyExists, "email is already subscribed")
	}

	if err := srv.subscriberRepo.Create(ctx, subscriber); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubscriber) {
			return nil, errors.Wrap(domainerrors.ErrSubscriberAlreadyExists, "email is already subscribed")
		}

		return nil, domainerrors.Persistence(err, "failed to store subscriber")
	}

	srv.log(ctx).Info("Subscriber added")

	return subscriber, nil
}
