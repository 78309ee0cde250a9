package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"queuectl/internal/config"
	"queuectl/internal/infra/sqliteq"
)

type Options struct {
	ID           int
	PollInterval time.Duration
}

// Run is the entrypoint of one worker process: open the store, install
// signal handling, and drive a single loop until SIGINT/SIGTERM.
func Run(opts Options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := sqliteq.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &Worker{
		ID:           opts.ID,
		Store:        st,
		Cfg:          cfg,
		PollInterval: opts.PollInterval,
	}
	w.Loop(ctx)
	return nil
}
