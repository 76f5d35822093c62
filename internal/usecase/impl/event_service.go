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
	"spurt/internal/domain/service"
	"spurt/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type eventService struct {
	eventRepo repository.EventRepository
	qrService service.QRCodeService
	logger    *slog.Logger
	now       func() time.Time
}

// EventServiceParams holds dependencies for EventService, injected by Fx.
type EventServiceParams struct {
	fx.In

	EventRepo repository.EventRepository
	QRService service.QRCodeService
	Logger    *slog.Logger
}

// NewEventService is the constructor for eventService.
func NewEventService(params EventServiceParams) usecase.EventUsecase {
	return &eventService{
		eventRepo: params.EventRepo,
		qrService: params.QRService,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *eventService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateEvent stores a new event with an empty gallery.
func (srv *eventService) CreateEvent(ctx context.Context, input *usecase.CreateEventInput) (*entity.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "title is required")
	}

	event := &entity.Event{
		Title:       title,
		Details:     input.Details,
		DateCreated: srv.now().UTC(),
		Images:      []*entity.Photo{},
	}
	if err := srv.eventRepo.Create(ctx, event); err != nil {
		return nil, domainerrors.Persistence(err, "failed to create event")
	}

	srv.log(ctx).Info("Event created", slog.Int64("eventID", event.ID))

	return event, nil
}

// ListEvents returns every event with its images.
func (srv *eventService) ListEvents(ctx context.Context) ([]*entity.Event, error) {
	events, err := srv.eventRepo.List(ctx)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to list events")
	}

	return events, nil
}

// GetEvent returns a single event with its images.
func (srv *eventService) GetEvent(ctx context.Context, id int64) (*entity.Event, error) {
	event, err := srv.eventRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrEventNotFound) {
		return nil, errors.Wrapf(domainerrors.ErrEventNotFound, "event %d", id)
	}
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to load event")
	}

	return event, nil
}

// EventShareQR renders the share link of an existing event as a PNG.
func (srv *eventService) EventShareQR(ctx context.Context, id int64) ([]byte, error) {
	exists, err := srv.eventRepo.Exists(ctx, id)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to check event")
	}
	if !exists {
		return nil, errors.Wrapf(domainerrors.ErrEventNotFound, "event %d", id)
	}

	png, err := srv.qrService.GenerateEventShareQR(id)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	return png, nil
}
