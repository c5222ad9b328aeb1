package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (overrides server.listen)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup()
	logger.Info("starting the fit-scorer", zap.String("version", version))

	eng, err := buildEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the scoring engine", zap.Error(err))
	}
	defer eng.Close()

	srv, err := server.New(config.Server, server.Deps{
		Scorer: eng.composer,
		Ranker: eng.ranker,
		Cache:  eng.cache,
	}, logger)
	if err != nil {
		logger.Fatal("creating the http server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("http server stopped", zap.Error(err))
		return
	}
	logger.Info("exiting", zap.Any("cache", eng.cache.Stats(context.Background())))
}
