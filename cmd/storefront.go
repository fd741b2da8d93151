package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scentlane/storefront/api"
	"github.com/scentlane/storefront/cart"
	"github.com/scentlane/storefront/catalog"
	"github.com/scentlane/storefront/internal/config"
	"github.com/scentlane/storefront/internal/log"
	"github.com/scentlane/storefront/internal/otel"
	"github.com/scentlane/storefront/realtime"
)

func runStorefront(c context.Context, cfg *config.Config) {
	appName := "storefront-shop"

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

	logger.Info().Str(log.KeyProcess, "init").Msg("initializing cart store")
	store := cart.NewStore(c, cart.NewFileStorage(cfg.Cart.Path))
	logger.Info().
		Str(log.KeyProcess, "init").
		Int(log.KeyCartLines, len(store.Items())).
		Msg("initialized cart store")

	apiClient := api.NewClient(cfg.Api.BaseUrl)
	rtClient := realtime.NewClient(cfg.Realtime.PublicUrl)

	// Authoritative fetch on mount, then live reconciliation via events. The
	// channel has no replay, so the same fetch also heals reconnects.
	bestSellers := catalog.NewView(catalog.BestSellers, nil)
	refetch := func(c context.Context) {
		products, err := apiClient.GetProducts(c, "")
		if err != nil {
			err = fmt.Errorf("failed fetching products with error=%w", err)
			zerolog.Ctx(c).Warn().Err(err).Msg(err.Error())
			return
		}
		bestSellers.Replace(products)
		zerolog.Ctx(c).Info().
			Int("products", bestSellers.Len()).
			Msg("refreshed best sellers from catalog api")
	}
	refetch(c)

	unbind := catalog.BindProducts(rtClient, bestSellers)
	defer unbind()
	unhook := rtClient.OnReconnect(refetch)
	defer unhook()

	done := make(chan error, 1)
	go func() {
		done <- rtClient.Run(c)
	}()

	<-c.Done()
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
	logger.Info().Str(log.KeyProcess, "shutdown").Msg("shutdown storefront client")
}
