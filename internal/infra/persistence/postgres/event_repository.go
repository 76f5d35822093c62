package postgres

import (
	"context"

	"spurt/internal/domain/entity"
	"spurt/internal/domain/repository"
	"spurt/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// eventRepository implements the domain.EventRepository interface using GORM.
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository is the constructor for eventRepository.
func NewEventRepository(db *gorm.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

// Create persists a new event without images.
func (repo *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	eventM := fromEventDomain(event)

	if err := repo.db.WithContext(ctx).Omit("Images").Create(eventM).Error; err != nil {
		return errors.Wrap(err, "failed to create event")
	}

	event.ID = eventM.ID

	return nil
}

// FindByID retrieves an event with its images ordered by id.
func (repo *eventRepository) FindByID(ctx context.Context, id int64) (*entity.Event, error) {
	var eventM model.EventModel
	err := repo.db.WithContext(ctx).
		Preload("Images", orderByID).
		Where("id = ?", id).
		First(&eventM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEventNotFound
		}

		return nil, errors.Wrap(err, "failed to find event by id")
	}

	return toEventDomain(&eventM), nil
}

// List retrieves all events with their images. The read may be served by a replica.
func (repo *eventRepository) List(ctx context.Context) ([]*entity.Event, error) {
	var eventMs []model.EventModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Read).
		Preload("Images", orderByID).
		Order("id").
		Find(&eventMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	events := make([]*entity.Event, 0, len(eventMs))
	for i := range eventMs {
		events = append(events, toEventDomain(&eventMs[i]))
	}

	return events, nil
}

// Exists reports whether an event with the given id is stored.
func (repo *eventRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.EventModel{}).
		Where("id = ?", id).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check event existence")
	}

	return count > 0, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// --- Mapper Functions ---

func toEventDomain(data *model.EventModel) *entity.Event {
	if data == nil {
		return nil
	}

	images := make([]*entity.Photo, 0, len(data.Images))
	for i := range data.Images {
		images = append(images, toPhotoDomain(&data.Images[i]))
	}

	return &entity.Event{
		ID:          data.ID,
		Title:       data.Title,
		Details:     data.Details,
		DateCreated: data.DateCreated,
		Images:      images,
	}
}

func fromEventDomain(data *entity.Event) *model.EventModel {
	if data == nil {
		return nil
	}

	return &model.EventModel{
		ID:          data.ID,
		Title:       data.Title,
		Details:     data.Details,
		DateCreated: data.DateCreated,
	}
}
