package cmd

import (
	"github.com/spf13/cobra"

	"queuectl/internal/api"
)

func serveCmd() *cobra.Command {
	var port int

	var command = &cobra.Command{
		Use:   "serve",
		Short: "Serve the queue over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			server := api.NewServer(cfg, st)
			server.Run(port)
			return nil
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on")
	return command
}
