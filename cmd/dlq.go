package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"queuectl/internal/domain"
)

func dlqCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and retry dead-lettered jobs",
	}
	command.AddCommand(dlqListCmd())
	command.AddCommand(dlqRetryCmd())
	return command
}

func dlqListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs in the dead-letter queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := st.List(cmd.Context(), domain.StateDead)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				cmd.Println("no jobs in dlq")
				return nil
			}

			cmd.Printf("%-38s %-30s %-10s %-30s\n", "id", "command", "attempts", "error")
			cmd.Println(strings.Repeat("-", 110))
			for _, job := range jobs {
				cmd.Printf("%-38s %-30s %-10d %-30s\n",
					truncate(job.ID, 38),
					truncate(job.Command, 30),
					job.Attempts,
					truncate(job.Error, 30),
				)
			}
			return nil
		},
	}
}

func dlqRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Move a dead job back to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.RetryDead(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Job %s moved back to queue\n", args[0])
			return nil
		},
	}
}
