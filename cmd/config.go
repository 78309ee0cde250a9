package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"queuectl/internal/config"
)

// CLI config keys use dashes; the settings file uses underscores.
var configKeys = map[string]string{
	"max-retries":  "max_retries",
	"backoff-base": "backoff_base",
	"job-timeout":  "job_timeout",
}

func configCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "config",
		Short: "Show and change queue settings",
	}
	command.AddCommand(configSetCmd())
	command.AddCommand(configShowCmd())
	return command
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting (max-retries, backoff-base, job-timeout)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := configKeys[args[0]]
			if !ok {
				valid := make([]string, 0, len(configKeys))
				for k := range configKeys {
					valid = append(valid, k)
				}
				return fmt.Errorf("invalid config key %q (valid: %s)", args[0], strings.Join(valid, ", "))
			}
			value, err := strconv.Atoi(args[1])
			if err != nil || value < 1 {
				return fmt.Errorf("value for %s must be a positive integer, got %q", args[0], args[1])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			cmd.Printf("Set %s = %d\n", args[0], value)
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			all := cfg.All()

			cmd.Println("current configuration:")
			cmd.Println(strings.Repeat("-", 30))
			for _, key := range config.Keys {
				cmd.Printf("  %s: %d\n", strings.ReplaceAll(key, "_", "-"), all[key])
			}
			return nil
		},
	}
}
