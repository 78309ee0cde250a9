package cmd

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"queuectl/internal/config"
	"queuectl/internal/infra/sqliteq"
)

func Run() {
	_ = godotenv.Load()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var command = &cobra.Command{
		Use:   "queuectl",
		Short: "Durable single-node background job queue",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	command.AddCommand(enqueueCmd())
	command.AddCommand(listCmd())
	command.AddCommand(statusCmd())
	command.AddCommand(workerCmd())
	command.AddCommand(dlqCmd())
	command.AddCommand(configCmd())
	command.AddCommand(serveCmd())

	if err := command.Execute(); err != nil {
		log.Fatal().Msgf("failed to execute command, err: %v", err.Error())
	}
}

// openStore loads the config and opens the queue database; callers
// own closing the store.
func openStore() (*config.Config, *sqliteq.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	st, err := sqliteq.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// truncate shortens s for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-2] + ".."
}
