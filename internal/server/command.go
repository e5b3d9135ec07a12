package server

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/server/config"
)

// NewRootCommand builds the server CLI. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	serve := func(cmd *cobra.Command, _ []string) error {
		cfg, logger, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog.Close()

		app, err := NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context())
	}

	cmd := &cobra.Command{
		Use:          "draftkeeper-server",
		Short:        "DraftKeeper document sync server",
		SilenceUsage: true,
		RunE:         serve,
	}
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC API and health endpoints",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeLog.Close()
			return Migrate(cmd.Context(), cfg, logger)
		},
	})
	return cmd
}

func setup(cmd *cobra.Command) (*config.Config, logging.Logger, io.Closer, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}
