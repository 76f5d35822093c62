package postgres

import (
	"context"

	"spurt/internal/domain/entity"
	"spurt/internal/domain/repository"
	"spurt/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// photoRepository implements the domain.PhotoRepository interface using GORM.
type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository is the constructor for photoRepository.
func NewPhotoRepository(db *gorm.DB) repository.PhotoRepository {
	return &photoRepository{db: db}
}

// FindByID retrieves a photo by id.
func (repo *photoRepository) FindByID(ctx context.Context, id int64) (*entity.Photo, error) {
	return repo.findByID(repo.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a photo with SELECT ... FOR UPDATE.
// It only locks when called on a transaction-bound repository.
func (repo *photoRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Photo, error) {
	return repo.findByID(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (repo *photoRepository) findByID(db *gorm.DB, id int64) (*entity.Photo, error) {
	var photoM model.PhotoModel
	if err := db.Where("id = ?", id).First(&photoM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPhotoNotFound
		}

		return nil, errors.Wrap(err, "failed to find photo by id")
	}

	return toPhotoDomain(&photoM), nil
}

// FindMainByEvent retrieves the main photo of an event.
func (repo *photoRepository) FindMainByEvent(ctx context.Context, eventID int64) (*entity.Photo, error) {
	var photoM model.PhotoModel
	err := repo.db.WithContext(ctx).
		Where("event_id = ? AND is_main", eventID).
		First(&photoM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPhotoNotFound
		}

		return nil, errors.Wrap(err, "failed to find main photo")
	}

	return toPhotoDomain(&photoM), nil
}

// Create persists a new photo and copies the generated id back onto the entity.
func (repo *photoRepository) Create(ctx context.Context, photo *entity.Photo) error {
	photoM := fromPhotoDomain(photo)

	if err := repo.db.WithContext(ctx).Create(photoM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrMainPhotoConflict, "failed to create photo")
		}
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrEventNotFound, "failed to create photo")
		}

		return errors.Wrap(err, "failed to create photo")
	}

	photo.ID = photoM.ID

	return nil
}

// SetMainFlag updates the main flag of one photo.
func (repo *photoRepository) SetMainFlag(ctx context.Context, id int64, isMain bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PhotoModel{}).
		Where("id = ?", id).
		Update("is_main", isMain)
	if result.Error != nil {
		// The only unique index on photos besides the key is the one-main-per-event index.
		if isUniqueConstraintViolation(result.Error) {
			return errors.Wrap(repository.ErrMainPhotoConflict, "failed to set main flag")
		}

		return errors.Wrap(result.Error, "failed to set main flag")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPhotoNotFound
	}

	return nil
}

// ClearMainFlags unsets the main flag on every photo of an event except keepID.
func (repo *photoRepository) ClearMainFlags(ctx context.Context, eventID, keepID int64) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.PhotoModel{}).
		Where("event_id = ? AND is_main AND id <> ?", eventID, keepID).
		Update("is_main", false)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to clear main flags")
	}

	return result.RowsAffected, nil
}

// Delete removes a photo record.
func (repo *photoRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PhotoModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete photo")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPhotoNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toPhotoDomain(data *model.PhotoModel) *entity.Photo {
	if data == nil {
		return nil
	}

	return &entity.Photo{
		ID:          data.ID,
		EventID:     data.EventID,
		FileName:    data.FileName,
		IsMain:      data.IsMain,
		PublicID:    data.PublicID,
		DateCreated: data.DateCreated,
	}
}

func fromPhotoDomain(data *entity.Photo) *model.PhotoModel {
	if data == nil {
		return nil
	}

	return &model.PhotoModel{
		ID:          data.ID,
		EventID:     data.EventID,
		FileName:    data.FileName,
		IsMain:      data.IsMain,
		PublicID:    data.PublicID,
		DateCreated: data.DateCreated,
	}
}
