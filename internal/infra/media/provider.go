package media

import (
	"context"
	"log/slog"

	"spurt/config"
	"spurt/internal/domain/constants"
	"spurt/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// HostParams holds dependencies for MediaHost, injected by Fx
type HostParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMediaHost creates a MediaHost based on configuration
func NewMediaHost(params HostParams) (service.MediaHost, error) {
	cfg := params.Config.Media
	logger := params.Logger

	if cfg == nil {
		return nil, errors.New("media configuration is required")
	}

	switch cfg.Provider {
	case constants.MediaProviderBlob, "":
		if cfg.BucketURL == "" {
			return nil, errors.New("media.bucketUrl is required for the blob provider")
		}
		logger.Info("Using blob media host", slog.String("bucket_url", cfg.BucketURL))

		host, err := NewBlobHost(params.Ctx, cfg.BucketURL, cfg.PublicBaseURL, logger)
		if err != nil {
			return nil, err
		}

		params.Lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				logger.Info("Closing media bucket")

				return host.Close()
			},
		})

		return host, nil

	case constants.MediaProviderS3:
		logger.Info("Using S3 media host",
			slog.String("bucket", cfg.S3.Bucket),
			slog.String("region", cfg.S3.Region),
		)

		return NewS3Host(params.Ctx, cfg.S3, cfg.PublicBaseURL, logger)

	default:
		return nil, errors.Errorf("unknown media provider: %s", cfg.Provider)
	}
}

// Module provides the media FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewMediaHost),
)
