package main

import (
	"context"
	"log/slog"
	"os"

	"spurt/config"
	"spurt/internal/delivery"
	"spurt/internal/delivery/worker"
	"spurt/internal/delivery/worker/handler"
	logs "spurt/internal/infra/log"
	"spurt/internal/infra/mail"
	"spurt/internal/infra/metrics"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			registerMetrics,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			// The worker is the last hop, so it always delivers through SendGrid
			mail.NewDeliverySender,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func registerMetrics(cfg *config.Config) {
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metrics.MustRegister(cfg.Env.ServiceName + "-mailworker")
	}
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start worker server", slog.Any("error", err))

				// Trigger graceful shutdown so the sender is closed
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
