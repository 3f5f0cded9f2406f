package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cartolab/rivermap/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the map request web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		service := newService()

		// Warm the dataset cache before accepting requests so concurrent
		// first requests never race the initial download.
		if err := service.Warm(ctx); err != nil {
			return eris.Wrap(err, "warm dataset cache")
		}
		countries, err := service.CountryNames(ctx)
		if err != nil {
			return eris.Wrap(err, "list countries")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(service, cfg.Output.Dir, countries)
		return srv.Run(ctx, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
