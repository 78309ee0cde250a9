package cmd

import (
	"github.com/spf13/cobra"

	"queuectl/internal/domain"
)

func enqueueCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "enqueue <json>",
		Short: "Enqueue a shell-command job",
		Long: `Enqueue a job described as JSON. Required: "command".
Optional: "id", "run_at" ("2006-01-02 15:04:05" local or RFC3339),
"priority" (1=high, 2=normal, 3=low; default 2).`,
		Example: `  queuectl enqueue '{"command":"echo hi"}'
  queuectl enqueue '{"command":"make backup","priority":1,"run_at":"2026-08-24 03:00:00"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := domain.ParseSpec([]byte(args[0]))
			if err != nil {
				return err
			}

			cfg, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.Enqueue(cmd.Context(), spec, cfg.Settings().MaxRetries)
			if err != nil {
				return err
			}
			cmd.Printf("Job enqueued: %s\n", id)
			return nil
		},
	}
	return command
}
