// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "spurt/internal/delivery/context"
	"spurt/internal/domain/entity"
	domainerrors "spurt/internal/domain/errors"
	"spurt/internal/domain/repository"
	"spurt/internal/domain/service"
	"spurt/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authenticator implements the Authenticator interface.
type authenticator struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	logger   *slog.Logger

	// Verified against when the email is unknown so both failure paths hash once.
	decoyHash []byte
	decoySalt []byte
}

// AuthenticatorParams holds dependencies for the Authenticator, injected by Fx.
type AuthenticatorParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	Logger   *slog.Logger
}

// NewAuthenticator is the constructor for authenticator.
func NewAuthenticator(params AuthenticatorParams) (usecase.Authenticator, error) {
	decoyHash, decoySalt, err := params.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive decoy credential")
	}

	return &authenticator{
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		logger:    params.Logger,
		decoyHash: decoyHash,
		decoySalt: decoySalt,
	}, nil
}

func (a *authenticator) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, a.logger)
}

// Authenticate looks the user up by exact email and verifies the password.
// Unknown email and wrong password produce the same error.
func (a *authenticator) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "email and password are required")
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		_, _ = a.hasher.Verify(password, a.decoyHash, a.decoySalt)

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
	}
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to load user")
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		if errors.Is(err, domainerrors.ErrMalformedCredential) {
			a.log(ctx).Error("Stored credential is malformed", slog.Int64("userID", user.ID), slog.Any("error", err))
		}

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
	}
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "authentication failed")
	}

	return user, nil
}
