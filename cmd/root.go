package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scentlane/storefront/internal/config"
	"github.com/scentlane/storefront/internal/log"
)

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.InitConfig(c, "storefront")
	logger := log.InitLogger(cfg.Application.LogPath, cfg.Application.Env).
		With().
		Str(log.KeyAppName, "storefront").
		Logger()
	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "storefront"}
	commands := []*cobra.Command{
		{
			Use:   "shop",
			Short: "Run the storefront client: live catalog views and the cart",
			Run: func(cmd *cobra.Command, args []string) {
				runStorefront(cmd.Context(), cfg)
			},
		},
		{
			Use:   "admin",
			Short: "Run the admin client: order and catalog notifications",
			Run: func(cmd *cobra.Command, args []string) {
				runAdmin(cmd.Context(), cfg)
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
