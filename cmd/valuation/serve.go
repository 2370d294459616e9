package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/company-valuation/internal/config"
	"github.com/iwvelando/company-valuation/internal/server"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const cleanupInterval = time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		serverConfigPath string
		address          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			serverConf, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				_ = logger.Sync()
				return err
			}
			// The server file's logging section wins over the application's.
			if serverConf.Logging != (config.LoggingConfig{}) {
				_ = logger.Sync()
				if logger, err = initializeLogger(serverConf.Logging, opts.logLevel); err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
			}
			defer func() {
				_ = logger.Sync()
			}()
			if address != "" {
				serverConf.Address = address
			}

			svc, err := server.BuildServices(logger, conf, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to build services: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go svc.Flows.Run(ctx, cleanupInterval)

			srv := &http.Server{
				Addr:              serverConf.Address,
				Handler:           server.NewHandler(logger, serverConf.UploadSizeBytes(), version, svc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening",
					zap.String("op", "main.serve"),
					zap.String("address", serverConf.Address),
					zap.String("version", version),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down",
				zap.String("op", "main.serve"),
				zap.Duration("timeout", serverConf.ShutdownTimeout),
			)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}
