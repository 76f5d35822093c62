package postgres

import (
	"context"
	"strings"

	"spurt/internal/domain/entity"
	"spurt/internal/domain/repository"
	"spurt/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// subscriberRepository implements the domain.SubscriberRepository interface using GORM.
type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository is the constructor for subscriberRepository.
func NewSubscriberRepository(db *gorm.DB) repository.SubscriberRepository {
	return &subscriberRepository{db: db}
}

// Create persists a new subscriber.
func (repo *subscriberRepository) Create(ctx context.Context, subscriber *entity.Subscriber) error {
	subscriberM := &model.SubscriberModel{
		Email:       subscriber.Email,
		DateCreated: subscriber.DateCreated,
	}

	if err := repo.db.WithContext(ctx).Create(subscriberM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicateSubscriber, "email already subscribed")
		}

		return errors.Wrap(err, "failed to create subscriber")
	}

	return nil
}

// uniquenessRepository implements the domain.UniquenessRepository interface using GORM.
type uniquenessRepository struct {
	db *gorm.DB
}

// NewUniquenessRepository is the constructor for uniquenessRepository.
func NewUniquenessRepository(db *gorm.DB) repository.UniquenessRepository {
	return &uniquenessRepository{db: db}
}

// EntityExists dispatches on the candidate's kind to the matching lookup.
func (repo *uniquenessRepository) EntityExists(ctx context.Context, candidate entity.UniquenessCheckable) (bool, error) {
	if candidate == nil {
		return false, errors.New("uniqueness candidate is required")
	}

	query, err := existsQuery(repo.db.WithContext(ctx), candidate)
	if err != nil {
		return false, err
	}

	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "failed to check %s uniqueness", candidate.Kind())
	}

	return count > 0, nil
}

func existsQuery(db *gorm.DB, candidate entity.UniquenessCheckable) (*gorm.DB, error) {
	key := candidate.UniqueKey()

	switch candidate.Kind() {
	case entity.EntityKindUser:
		return db.Model(&model.UserModel{}).Where("LOWER(email) = ?", strings.ToLower(key)), nil
	case entity.EntityKindSubscriber:
		return db.Model(&model.SubscriberModel{}).Where("email = ?", key), nil
	default:
		return nil, errors.Errorf("unsupported entity kind %q", candidate.Kind())
	}
}
