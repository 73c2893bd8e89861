package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-admingen/internal/app"
	"github.com/goliatone/go-admingen/internal/server"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin pages and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			srv, err := server.New(application.Admin,
				server.WithLogger(logger.Named("http")),
				server.WithAPIPath(cfg.Server.APIPath),
				server.WithRenderer(cfg.Admin.Renderer),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
			)
			if err != nil {
				return err
			}
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config)")
	return cmd
}
