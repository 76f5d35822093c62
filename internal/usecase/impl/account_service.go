package impl

import (
	"context"
	"html"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
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
	confirmationSubject = "Account Confirmation"
	confirmationPath    = "/confirm-email"
	mailChannelAPI      = "api"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	uniquenessRepo repository.UniquenessRepository
	authenticator  usecase.Authenticator
	hasher         service.PasswordHasher
	tokenIssuer    service.TokenIssuer
	mailer         service.EmailSender
	mailCfg        config.MailConfig
	publicOrigin   string
	logger         *slog.Logger
	now            func() time.Time
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	UserRepo       repository.UserRepository
	UniquenessRepo repository.UniquenessRepository
	Authenticator  usecase.Authenticator
	Hasher         service.PasswordHasher
	TokenIssuer    service.TokenIssuer
	Mailer         service.EmailSender
	Config         *config.Config
	Logger         *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	var mailCfg config.MailConfig
	if params.Config.Mail != nil {
		mailCfg = *params.Config.Mail
	}

	return &accountService{
		txManager:      params.TxManager,
		userRepo:       params.UserRepo,
		uniquenessRepo: params.UniquenessRepo,
		authenticator:  params.Authenticator,
		hasher:         params.Hasher,
		tokenIssuer:    params.TokenIssuer,
		mailer:         params.Mailer,
		mailCfg:        mailCfg,
		publicOrigin:   params.Config.App.PublicOrigin,
		logger:         params.Logger,
		now:            time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup creates an unverified Admin account and queues the confirmation email.
func (srv *accountService) Signup(ctx context.Context, input *usecase.SignupInput) (user *entity.User, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "name and email are required")
	}

	candidate := &entity.User{Email: email}
	exists, err := srv.uniquenessRepo.EntityExists(ctx, candidate)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to check email uniqueness")
	}
	if exists {
		return nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "email is already registered")
	}

	hash, salt, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user = &entity.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		PasswordSalt:   salt,
		DateRegistered: srv.now().UTC(),
		Role:           entity.RoleAdmin,
		Enabled:        true,
		EmailVerified:  false,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "email is already registered")
		}

		return nil, domainerrors.Persistence(err, "failed to create user")
	}

	srv.log(ctx).Info("Account created", slog.Int64("userID", user.ID))

	token, tokenErr := srv.tokenIssuer.IssueConfirmation(user)
	metrics.TokensIssuedTotal.WithLabelValues("confirmation", metrics.Result(tokenErr)).Inc()
	if tokenErr != nil {
		srv.log(ctx).Error("Failed to issue confirmation token", slog.Int64("userID", user.ID), slog.Any("error", tokenErr))

		return user, nil
	}

	srv.sendDetached(ctx, srv.confirmationMessage(ctx, user, srv.confirmationLink(input.Origin, token)))

	return user, nil
}

// Login authenticates the user and issues an access token for verified, enabled accounts.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (output *usecase.LoginOutput, err error) {
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	user, err := srv.authenticator.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		srv.log(ctx).Info("Login rejected", slog.Any("error", err))

		return nil, err
	}
	if !user.EmailVerified {
		return nil, errors.Wrap(domainerrors.ErrEmailNotVerified, "login requires a confirmed email")
	}
	if !user.Enabled {
		return nil, errors.Wrap(domainerrors.ErrForbidden, "account is disabled")
	}

	token, err := srv.tokenIssuer.Issue(user)
	metrics.TokensIssuedTotal.WithLabelValues("login", metrics.Result(err)).Inc()
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	srv.log(ctx).Info("Login succeeded",
		slog.Int64("userID", user.ID),
		slog.String("tokenTTL", util.FormatDuration(srv.tokenIssuer.TTL())),
	)

	return &usecase.LoginOutput{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
		Roles: user.Role.String(),
	}, nil
}

// ConfirmEmail verifies the account named by the token. Confirming twice is not an error.
func (srv *accountService) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := srv.tokenIssuer.ValidateConfirmation(token)
	if err != nil {
		return errors.Wrap(domainerrors.ErrConfirmationTokenInvalid, err.Error())
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByEmail(ctx, claims.Subject)
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrConfirmationTokenInvalid, "account no longer exists")
		}
		if err != nil {
			return err
		}
		if claims.GroupSID != "" && claims.GroupSID != strconv.FormatInt(user.ID, 10) {
			return errors.Wrap(domainerrors.ErrConfirmationTokenInvalid, "token does not match account")
		}
		if user.EmailVerified {
			return nil
		}

		return userRepo.MarkEmailVerified(ctx, user.ID)
	})
	if err != nil {
		return domainerrors.Persistence(err, "failed to confirm email")
	}

	srv.log(ctx).Info("Email confirmed", slog.String("groupsid", claims.GroupSID))

	return nil
}

// confirmationLink prefers the caller's origin when it is an absolute http(s) URL.
func (srv *accountService) confirmationLink(origin, token string) string {
	base := srv.publicOrigin
	if u, err := url.Parse(origin); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		base = u.Scheme + "://" + u.Host
	}

	return strings.TrimRight(base, "/") + confirmationPath + "?token=" + url.QueryEscape(token)
}

func (srv *accountService) confirmationMessage(ctx context.Context, user *entity.User, link string) *service.EmailMessage {
	return &service.EmailMessage{
		FromAddress: srv.mailCfg.FromAddress,
		FromName:    srv.mailCfg.FromName,
		ToAddress:   user.Email,
		ToName:      user.Name,
		Subject:     confirmationSubject,
		HTMLBody:    "<div><span> Click the link to activate your account</span><a>" + html.EscapeString(link) + "</a></div>",
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
	}
}

// sendDetached hands msg to the mailer without blocking the caller. The send keeps
// the request's values but not its cancellation, and is bounded by the send timeout.
func (srv *accountService) sendDetached(ctx context.Context, msg *service.EmailMessage) {
	log := srv.log(ctx)
	timeout := srv.mailCfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	go func() {
		defer cancel()

		err := srv.mailer.Send(sendCtx, msg)
		metrics.MailSendTotal.WithLabelValues(mailChannelAPI, metrics.Result(err)).Inc()
		if err != nil {
			log.Error("Failed to send confirmation email", slog.String("to", msg.ToAddress), slog.Any("error", err))

			return
		}

		log.Debug("Confirmation email handed off", slog.String("to", msg.ToAddress))
	}()
}
