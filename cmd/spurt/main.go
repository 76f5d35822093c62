package main

import (
	"context"
	"log/slog"
	"os"

	"spurt/config"
	"spurt/internal/delivery"
	"spurt/internal/delivery/api"
	apimiddleware "spurt/internal/delivery/api/middleware"
	"spurt/internal/delivery/api/router/handler"
	"spurt/internal/domain/service"
	"spurt/internal/infra/auth"
	logs "spurt/internal/infra/log"
	"spurt/internal/infra/mail"
	"spurt/internal/infra/media"
	"spurt/internal/infra/metrics"
	"spurt/internal/infra/persistence/postgres"
	"spurt/internal/infra/qrcode"
	"spurt/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			registerMetrics,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
		),
		media.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewEventRepository,
			postgres.NewPhotoRepository,
			postgres.NewSubscriberRepository,
			postgres.NewUniquenessRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewHMACHasher,
			newTokenIssuer,
			qrcode.NewFromConfig,
			mail.NewEmailSender,
		),
	)
}

// newTokenIssuer adapts the variadic JWT constructor for fx.
func newTokenIssuer(cfg *config.Config) (service.TokenIssuer, error) {
	return auth.NewJWTService(cfg)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthenticator,
			impl.NewAccountService,
			impl.NewEventService,
			impl.NewPhotoService,
			impl.NewSubscriberService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
			apimiddleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAccountHandler,
			handler.NewEventHandler,
			handler.NewPhotoHandler,
			handler.NewSubscriberHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func registerMetrics(cfg *config.Config) {
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metrics.MustRegister(cfg.Env.ServiceName)
	}
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
