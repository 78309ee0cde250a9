package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"queuectl/internal/domain"
)

func listCmd() *cobra.Command {
	var state string

	var command = &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by state",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			jobs, err := st.List(cmd.Context(), domain.JobState(state))
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				if state != "" {
					cmd.Printf("No jobs with state %q\n", state)
				} else {
					cmd.Println("no jobs in queue")
				}
				return nil
			}

			cmd.Printf("%-38s %-30s %-12s %-10s\n", "id", "command", "state", "attempts")
			cmd.Println(strings.Repeat("-", 92))
			for _, job := range jobs {
				cmd.Printf("%-38s %-30s %-12s %-10s\n",
					truncate(job.ID, 38),
					truncate(job.Command, 30),
					job.State,
					fmt.Sprintf("%d/%d", job.Attempts, job.MaxRetries),
				)
			}
			return nil
		},
	}

	command.Flags().StringVar(&state, "state", "", "filter by state (pending|processing|failed|completed|dead)")
	return command
}

func statusCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "status",
		Short: "Show per-state job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Println("job queue status:")
			cmd.Println(strings.Repeat("-", 40))
			if len(stats) == 0 {
				cmd.Println("no jobs in queue")
				return nil
			}
			total := 0
			for _, state := range []domain.JobState{
				domain.StatePending, domain.StateProcessing, domain.StateFailed,
				domain.StateCompleted, domain.StateDead,
			} {
				if count, ok := stats[state]; ok {
					cmd.Printf("  %s: %d\n", state, count)
					total += count
				}
			}
			cmd.Println(strings.Repeat("-", 40))
			cmd.Printf("  total: %d\n", total)
			return nil
		},
	}
	return command
}
