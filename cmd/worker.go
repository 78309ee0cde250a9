package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"queuectl/internal/config"
	"queuectl/internal/pool"
	"queuectl/internal/worker"
)

func workerCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "worker",
		Short: "Manage the worker pool",
	}
	command.AddCommand(workerStartCmd())
	command.AddCommand(workerStopCmd())
	command.AddCommand(workerStatusCmd())
	command.AddCommand(workerRestartCmd())
	command.AddCommand(workerRunCmd())
	command.AddCommand(workerLoopCmd())
	return command
}

func workerStartCmd() *cobra.Command {
	var count int

	var command = &cobra.Command{
		Use:   "start",
		Short: "Start a pool of worker processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := pool.Start(cfg, count); err != nil {
				return err
			}
			cmd.Printf("Started %d worker(s) (logs: %s)\n", count, cfg.LogPath())
			return nil
		},
	}

	command.Flags().IntVar(&count, "count", 1, "number of workers to start")
	return command
}

func workerStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := pool.Stop(cfg); err != nil {
				if errors.Is(err, pool.ErrNotRunning) {
					cmd.Println("no worker pool running")
					return nil
				}
				return err
			}
			cmd.Println("Worker pool stopped")
			return nil
		},
	}
}

func workerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show worker pool status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			status, err := pool.PoolStatus(cfg)
			if err != nil {
				return err
			}
			if !status.Running {
				cmd.Println("worker pool: not running")
				return nil
			}
			cmd.Printf("worker pool: running (pid %d, %d workers)\n", status.PID, status.Count)
			return nil
		},
	}
}

func workerRestartCmd() *cobra.Command {
	var count int

	var command = &cobra.Command{
		Use:   "restart",
		Short: "Restart the worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := pool.Restart(cfg, count); err != nil {
				return err
			}
			cmd.Printf("Restarted with %d worker(s)\n", count)
			return nil
		},
	}

	command.Flags().IntVar(&count, "count", 1, "number of workers to start")
	return command
}

// workerRunCmd is the detached supervisor process spawned by `worker
// start`; not meant to be invoked by hand.
func workerRunCmd() *cobra.Command {
	var count int

	var command = &cobra.Command{
		Use:    "run",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return pool.Supervise(cfg, count)
		},
	}

	command.Flags().IntVar(&count, "count", 1, "number of workers to spawn")
	return command
}

// workerLoopCmd is one worker process, spawned by the supervisor.
func workerLoopCmd() *cobra.Command {
	var (
		workerID     int
		pollInterval time.Duration
	)

	var command = &cobra.Command{
		Use:    "loop",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Run(worker.Options{
				ID:           workerID,
				PollInterval: pollInterval,
			})
		},
	}

	command.Flags().IntVar(&workerID, "worker-id", 1, "worker id for logging")
	command.Flags().DurationVar(&pollInterval, "poll-interval", time.Second, "sleep between empty polls")
	return command
}
