package postgres

import (
	"context"

	"spurt/internal/domain/entity"
	"spurt/internal/domain/repository"
	"spurt/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by id.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user whose email matches exactly.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).Where("email = ?", email).First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user and copies the generated id back onto the entity.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicateUser, "email already exists")
		}

		return errors.Wrap(err, "failed to create user")
	}

	user.ID = userM.ID

	return nil
}

// MarkEmailVerified sets the email-verified flag of the given user.
func (repo *userRepository) MarkEmailVerified(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("email_verified", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark email verified")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:             data.ID,
		Name:           data.Name,
		Email:          data.Email,
		PasswordHash:   data.PasswordHash,
		PasswordSalt:   data.PasswordSalt,
		DateRegistered: data.DateRegistered,
		Role:           entity.Role(data.Role),
		Enabled:        data.Enabled,
		EmailVerified:  data.EmailVerified,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:             data.ID,
		Name:           data.Name,
		Email:          data.Email,
		PasswordHash:   data.PasswordHash,
		PasswordSalt:   data.PasswordSalt,
		DateRegistered: data.DateRegistered,
		Role:           data.Role.String(),
		Enabled:        data.Enabled,
		EmailVerified:  data.EmailVerified,
	}
}
