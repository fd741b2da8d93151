package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scentlane/storefront/internal/config"
	"github.com/scentlane/storefront/internal/log"
	"github.com/scentlane/storefront/internal/otel"
	"github.com/scentlane/storefront/notification"
	"github.com/scentlane/storefront/realtime"
)

func runAdmin(c context.Context, cfg *config.Config) {
	appName := "storefront-admin"

	logger := zerolog.Ctx(c).With().Str(log.KeyAppName, appName).Logger()
	c = logger.WithContext(c)

	logger.Info().Str(log.KeyProcess, "InitOtelSdk").Msg("initializing otel sdk")
	otelEndpoint := fmt.Sprintf("%s:%d", cfg.Otel.Host, cfg.Otel.Port)
	shutdownFuncs, err := otel.InitOtelSdk(c, appName, otelEndpoint)
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.KeyProcess, "InitOtelSdk").
			Msgf("failed initializing otel sdk with error=%s", err.Error())
	}
	logger.Info().Str(log.KeyProcess, "InitOtelSdk").Msg("initialized otel sdk")

	rtClient := realtime.NewClient(
		cfg.Realtime.AdminUrl,
		realtime.WithBearerToken(cfg.Api.Token),
	)
	center := notification.NewCenter(notification.DefaultCapacity)
	detach := center.Attach(rtClient)
	defer detach()

	done := make(chan error, 1)
	go func() {
		done <- rtClient.Run(c)
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			logger.Info().
				Str(log.KeyProcess, "shutdown").
				Msg("received interruption signal, shutting down")
			err = <-done
			if err != nil {
				logger.Error().
					Err(err).
					Str(log.KeyProcess, "shutdown").
					Msgf("failed shutting down realtime client with error=%s", err.Error())
			}
			err = otel.ShutdownOtel(context.WithoutCancel(c), shutdownFuncs)
			if err != nil {
				logger.Error().
					Err(err).
					Str(log.KeyProcess, "shutdown").
					Msgf("failed shutting down otel with error=%s", err.Error())
			}
			logger.Info().Str(log.KeyProcess, "shutdown").Msg("shutdown admin client")
			return
		case <-ticker.C:
			logger.Info().
				Bool("connected", rtClient.IsConnected()).
				Int("notifications", center.Len()).
				Int("unread", center.Unread()).
				Msg("admin notification feed")
		}
	}
}
