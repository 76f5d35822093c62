package mail

import (
	"context"
	"log/slog"

	"spurt/config"
	"spurt/internal/domain/constants"
	"spurt/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// SenderParams holds dependencies for EmailSender, injected by Fx
type SenderParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEmailSender creates the EmailSender picked by mail.provider
func NewEmailSender(params SenderParams) (service.EmailSender, error) {
	cfg := params.Config.Mail
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" || cfg.Provider == constants.MailProviderLog {
		logger.Info("Mail provider not configured, using log sender")

		return NewLogSender(logger), nil
	}

	var sender service.EmailSender
	var err error

	switch cfg.Provider {
	case constants.MailProviderSendGrid:
		logger.Info("Using SendGrid mail sender")

		sender, err = NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.Endpoint, cfg.SendTimeout, logger)
		if err != nil {
			return nil, err
		}

	case constants.MailProviderPubSub:
		if cfg.PubSub.ProjectID == "" {
			return nil, errors.New("project ID is required for pubsub mail provider")
		}
		if cfg.PubSub.TopicID == "" {
			return nil, errors.New("topic ID is required for pubsub mail provider")
		}
		logger.Info("Using Google Pub/Sub mail queue",
			slog.String("project_id", cfg.PubSub.ProjectID),
			slog.String("topic_id", cfg.PubSub.TopicID),
		)

		sender, err = NewPubSubSender(params.Ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicID, cfg.PubSub.CredentialsPath, logger)
		if err != nil {
			return nil, err
		}

	case constants.MailProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local mail provider")
		}
		logger.Info("Using local HTTP push to mail worker",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		sender = NewLocalHTTPSender(cfg.LocalEndpoint, cfg.SendTimeout, logger)

	default:
		return nil, errors.Errorf("unknown mail provider: %s", cfg.Provider)
	}

	registerClose(params.Lc, sender, logger)

	return sender, nil
}

// NewDeliverySender creates the SendGrid sender the mail worker delivers queued messages with.
func NewDeliverySender(params SenderParams) (service.EmailSender, error) {
	cfg := params.Config.Mail
	if cfg == nil {
		return nil, errors.New("mail configuration is required")
	}

	sender, err := NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.Endpoint, cfg.SendTimeout, params.Logger)
	if err != nil {
		return nil, err
	}
	registerClose(params.Lc, sender, params.Logger)

	return sender, nil
}

func registerClose(lc fx.Lifecycle, sender service.EmailSender, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("Closing EmailSender")

			return sender.Close()
		},
	})
}
