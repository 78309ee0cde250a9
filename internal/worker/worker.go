package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"queuectl/internal/config"
	"queuectl/internal/domain"
	"queuectl/internal/executor"
	"queuectl/internal/ports"
)

const defaultPollInterval = time.Second

// Worker drives one logical worker: claim, execute, transition, repeat.
type Worker struct {
	ID           int
	Store        ports.Store
	Cfg          *config.Config
	PollInterval time.Duration
}

// Loop runs until ctx is canceled. A job claimed before cancellation
// is always finished and its transition persisted; only idle polling
// stops immediately. Store errors are logged and polling continues —
// a store hiccup must not kill the worker.
func (w *Worker) Loop(ctx context.Context) {
	poll := w.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	logger := log.With().Int("worker", w.ID).Logger()
	logger.Info().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker shutting down cleanly")
			return
		default:
		}

		job, err := w.Store.Claim(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error().Err(err).Msg("claim failed")
			sleep(ctx, poll)
			continue
		}
		if job == nil {
			sleep(ctx, poll)
			continue
		}
		w.process(ctx, logger, job)
	}
}

// process executes one claimed job and applies the state machine.
// Execution and the follow-up update run on a non-cancelable context:
// once claimed, the job is finished even during shutdown.
func (w *Worker) process(ctx context.Context, logger zerolog.Logger, job *domain.Job) {
	runCtx := context.WithoutCancel(ctx)
	settings := w.Cfg.Settings()

	logger.Info().
		Str("job", job.ID).
		Str("command", job.Command).
		Int("attempt", job.Attempts).
		Msg("processing job")

	out := executor.Run(runCtx, job.Command, time.Duration(settings.JobTimeout)*time.Second)

	if err := applyOutcome(runCtx, w.Store, job, out, settings.BackoffBase); err != nil {
		logger.Error().Err(err).Str("job", job.ID).Msg("failed to persist job outcome")
		return
	}

	if out.Success {
		logger.Info().Str("job", job.ID).Msg("job completed")
	} else {
		logger.Warn().
			Str("job", job.ID).
			Int("attempts", job.Attempts+1).
			Int("max_retries", job.MaxRetries).
			Int("exit_code", out.ExitCode).
			Msg("job failed")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
