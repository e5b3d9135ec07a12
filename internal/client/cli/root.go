package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/draftkeeper/internal/client/client"
	"github.com/dmitrijs2005/draftkeeper/internal/client/config"
	"github.com/dmitrijs2005/draftkeeper/internal/client/drafts"
	repo "github.com/dmitrijs2005/draftkeeper/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

// NewRootCommand builds the draftkeeper command tree. Without a
// subcommand it starts the interactive editor.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "draftkeeper",
		Short:        "Local-first document editor with cloud sync",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeLog.Close()

			app, err := NewApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			app.Run(cmd.Context())
			return nil
		},
	}
	config.BindFlags(cmd.PersistentFlags())
	cmd.AddCommand(newDraftsCommand())
	return cmd
}

func newDraftsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List local drafts that have not been synced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeLog.Close()
			w := cmd.OutOrStdout()

			db, err := client.InitDatabase(cmd.Context(), cfg.DraftsDB)
			if err != nil {
				return fmt.Errorf("error initializing database: %w", err)
			}
			defer db.Close()

			list := drafts.NewStore(repo.NewSQLiteRepository(db), logger).List(cmd.Context())
			if len(list) == 0 {
				fmt.Fprintln(w, "No local drafts.")
				return nil
			}
			renderDrafts(w, list, cfg.PreviewFields)
			return nil
		},
	}
}

func setup(cmd *cobra.Command) (*config.Config, logging.Logger, io.Closer, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: "text",
		File:   cfg.LogFile,
		Writer: os.Stderr,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}
