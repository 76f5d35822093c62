package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"spurt/config"
	deliverycontext "spurt/internal/delivery/context"
	"spurt/internal/domain/entity"
	domainerrors "spurt/internal/domain/errors"
	"spurt/internal/domain/repository"
	"spurt/internal/domain/service"
	"spurt/internal/infra/metrics"
	"spurt/internal/usecase"
	"spurt/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultMaxUploadBytes = 10 << 20

	photoOpUpload  = "upload"
	photoOpSetMain = "set_main"
	photoOpDelete  = "delete"
)

var defaultAcceptedExtensions = []string{".jpg", ".jpeg", ".png"}

type photoService struct {
	txManager          repository.TransactionManager
	photoRepo          repository.PhotoRepository
	eventRepo          repository.EventRepository
	mediaHost          service.MediaHost
	maxUploadBytes     int64
	acceptedExtensions []string
	logger             *slog.Logger
	now                func() time.Time
}

// PhotoServiceParams holds dependencies for PhotoService, injected by Fx.
type PhotoServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	PhotoRepo repository.PhotoRepository
	EventRepo repository.EventRepository
	MediaHost service.MediaHost
	Config    *config.Config
	Logger    *slog.Logger
}

// NewPhotoService is the constructor for photoService.
func NewPhotoService(params PhotoServiceParams) usecase.PhotoUsecase {
	srv := &photoService{
		txManager:          params.TxManager,
		photoRepo:          params.PhotoRepo,
		eventRepo:          params.EventRepo,
		mediaHost:          params.MediaHost,
		maxUploadBytes:     defaultMaxUploadBytes,
		acceptedExtensions: defaultAcceptedExtensions,
		logger:             params.Logger,
		now:                time.Now,
	}
	if media := params.Config.Media; media != nil {
		if media.MaxUploadBytes > 0 {
			srv.maxUploadBytes = media.MaxUploadBytes
		}
		if len(media.AcceptedExtensions) > 0 {
			srv.acceptedExtensions = media.AcceptedExtensions
		}
	}

	return srv
}

func (srv *photoService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Upload hosts the image and records it on the event as a non-main photo.
func (srv *photoService) Upload(ctx context.Context, input *usecase.UploadPhotoInput) (photo *entity.Photo, err error) {
	defer func() {
		metrics.PhotoOperationsTotal.WithLabelValues(photoOpUpload, metrics.Result(err)).Inc()
	}()

	if input.Size <= 0 || input.Content == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "file is empty")
	}
	if input.Size > srv.maxUploadBytes {
		return nil, domainerrors.ErrUploadTooLarge.WithDetails("limit is " + util.FormatBytes(srv.maxUploadBytes))
	}
	if !util.HasExtension(input.FileName, srv.acceptedExtensions) {
		return nil, errors.Wrapf(domainerrors.ErrUnsupportedFileType, "file %q", input.FileName)
	}

	exists, err := srv.eventRepo.Exists(ctx, input.EventID)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to check event")
	}
	if !exists {
		return nil, errors.Wrapf(domainerrors.ErrEventNotFound, "event %d", input.EventID)
	}

	uri, publicID, err := srv.mediaHost.Upload(ctx, input.FileName, io.LimitReader(input.Content, srv.maxUploadBytes))
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRemoteUploadFailed, err.Error())
	}

	photo = &entity.Photo{
		EventID:     input.EventID,
		FileName:    uri,
		IsMain:      false,
		PublicID:    publicID,
		DateCreated: srv.now().UTC(),
	}
	if err := srv.photoRepo.Create(ctx, photo); err != nil {
		srv.discardUpload(ctx, publicID)
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, errors.Wrapf(domainerrors.ErrEventNotFound, "event %d", input.EventID)
		}

		return nil, domainerrors.Persistence(err, "failed to store photo")
	}

	srv.log(ctx).Info("Photo uploaded", slog.Int64("eventID", photo.EventID), slog.Int64("photoID", photo.ID))

	return photo, nil
}

// discardUpload deletes a hosted asset whose record could not be stored.
func (srv *photoService) discardUpload(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := srv.mediaHost.Delete(ctx, publicID); err != nil {
		srv.log(ctx).Error("Failed to remove orphaned upload",
			slog.String("publicID", publicID),
			slog.Any("error", err),
		)
	}
}

// GetMainPhoto returns nil without error when the event has no main photo.
func (srv *photoService) GetMainPhoto(ctx context.Context, eventID int64) (*entity.Photo, error) {
	photo, err := srv.photoRepo.FindMainByEvent(ctx, eventID)
	if errors.Is(err, repository.ErrPhotoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to load main photo")
	}

	return photo, nil
}

// SetMain moves the main flag of an event to newMainID inside one transaction.
func (srv *photoService) SetMain(ctx context.Context, newMainID, currentMainID int64) (err error) {
	defer func() {
		metrics.PhotoOperationsTotal.WithLabelValues(photoOpSetMain, metrics.Result(err)).Inc()
	}()

	log := srv.log(ctx)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		photoRepo := repoFactory.PhotoRepo()

		next, err := photoRepo.FindByIDForUpdate(ctx, newMainID)
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return errors.Wrapf(domainerrors.ErrPhotoNotFound, "photo %d", newMainID)
		}
		if err != nil {
			return err
		}
		if next.IsMain {
			return errors.Wrapf(domainerrors.ErrAlreadyMain, "photo %d", newMainID)
		}

		if currentMainID != 0 && currentMainID != newMainID {
			current, err := photoRepo.FindByIDForUpdate(ctx, currentMainID)
			switch {
			case errors.Is(err, repository.ErrPhotoNotFound):
				log.Debug("Current main photo not found", slog.Int64("photoID", currentMainID))
			case err != nil:
				return err
			case current.EventID != next.EventID:
				log.Warn("Current main photo belongs to another event",
					slog.Int64("photoID", currentMainID),
					slog.Int64("eventID", current.EventID),
				)
			case current.IsMain:
				if err := photoRepo.SetMainFlag(ctx, current.ID, false); err != nil {
					return err
				}
			}
		}

		cleared, err := photoRepo.ClearMainFlags(ctx, next.EventID, next.ID)
		if err != nil {
			return err
		}
		if cleared > 0 {
			log.Info("Cleared stale main photo flags", slog.Int64("eventID", next.EventID), slog.Int64("count", cleared))
		}

		if err := photoRepo.SetMainFlag(ctx, next.ID, true); err != nil {
			if errors.Is(err, repository.ErrMainPhotoConflict) {
				return errors.Wrap(domainerrors.ErrPersistence, "concurrent main photo change")
			}

			return err
		}

		return nil
	})
	if err != nil {
		return domainerrors.Persistence(err, "failed to set main photo")
	}

	log.Info("Main photo set", slog.Int64("photoID", newMainID))

	return nil
}

// Delete removes a non-main photo. A hosted asset is deleted before the record.
func (srv *photoService) Delete(ctx context.Context, photoID int64) (err error) {
	defer func() {
		metrics.PhotoOperationsTotal.WithLabelValues(photoOpDelete, metrics.Result(err)).Inc()
	}()

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		photoRepo := repoFactory.PhotoRepo()

		photo, err := photoRepo.FindByIDForUpdate(ctx, photoID)
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return errors.Wrapf(domainerrors.ErrPhotoNotFound, "photo %d", photoID)
		}
		if err != nil {
			return err
		}
		if photo.IsMain {
			return errors.Wrapf(domainerrors.ErrCannotDeleteMain, "photo %d", photoID)
		}

		if photo.IsHostedRemotely() {
			if err := srv.mediaHost.Delete(ctx, photo.PublicID); err != nil {
				return errors.Wrap(domainerrors.ErrRemoteDeleteFailed, err.Error())
			}
		}

		return photoRepo.Delete(ctx, photo.ID)
	})
	if err != nil {
		return domainerrors.Persistence(err, "failed to delete photo")
	}

	srv.log(ctx).Info("Photo deleted", slog.Int64("photoID", photoID))

	return nil
}
