package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/application"
	"github.com/spigell/recruiter/internal/logger"
	"github.com/spigell/recruiter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve candidate sessions over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		fatalConfig(logger, err)
	}

	deps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building collaborators", zap.Error(err))
	}

	srv := server.New(func() (*application.Machine, error) {
		return newMachine(cfg, deps)
	}, logger, server.WithSessionTTL(cfg.Server.SessionTTL))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down the server")
		if err := srv.Shutdown(); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting the recruiter server", zap.String("version", version), zap.String("company", cfg.Company))

	if err := srv.Listen(cfg.Server.Listen); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}
}
