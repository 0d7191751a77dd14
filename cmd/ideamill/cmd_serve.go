package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ideamill/ideamill/internal/projectconfig"
	"github.com/ideamill/ideamill/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the idea pipeline HTTP server",
		Long: `Start the idea pipeline HTTP server.

Endpoints:
  POST /api/process  Run a topic through the pipeline
  GET  /api/history  List the most recent runs
  GET  /api/health   Health check

Configuration is read from .ideamill.yaml; the PORT environment variable or
the --port flag override the configured port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			logger := slog.Default()
			sup, st, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			srv := webserver.New(webserver.Config{
				Port:           cfg.Server.Port,
				StaticDir:      cfg.Server.StaticDir,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Logger:         logger,
			}, sup)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config and PORT)")

	return cmd
}
