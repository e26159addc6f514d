// cmd/c12tables/poll.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/c12tables/internal/logging"
	"github.com/tamzrod/c12tables/internal/poller"
	"github.com/tamzrod/c12tables/internal/recorder"
	"github.com/tamzrod/c12tables/internal/transport/replay"
)

func newPollCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Poll the configured tables, optionally recording them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPoll(ctx, opts)
		},
	}
}

func runPoll(ctx context.Context, opts *rootOptions) error {
	cfg, s, closeFn, err := openSession(opts)
	if err != nil {
		return err
	}
	defer closeFn()
	log := s.Logger()

	// ---- poller ----
	p, err := poller.Build(cfg, s)
	if err != nil {
		return fmt.Errorf("poller build failed: %w", err)
	}

	// ---- recorder (optional) ----
	var rec *recorder.Recorder
	if cfg.Record.Enabled {
		store, err := replay.Open(cfg.Record.Path, log)
		if err != nil {
			return fmt.Errorf("record store: %w", err)
		}
		defer store.Close()
		if rec, err = recorder.New(store, cfg.Record.Capture, log); err != nil {
			return err
		}
		log.Info("recording", "path", cfg.Record.Path, "capture", rec.Capture())
	}

	out := make(chan poller.PollResult)
	go p.Run(ctx, out)

	orchestrate(ctx, out, rec, log)
	return nil
}

// orchestrate owns the health state and the 1 Hz seconds ticker.
func orchestrate(ctx context.Context, in <-chan poller.PollResult, rec *recorder.Recorder, log logging.Logger) {
	var health recorder.Health

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if res.Err != nil {
				log.Warn("poll failed", "device", res.DeviceID, "code", res.RawErrorCode, "err", res.Err)
			} else {
				log.Debug("poll ok", "device", res.DeviceID, "tables", len(res.Tables))
			}

			if rec != nil {
				if err := rec.Write(res); err != nil {
					log.Error("record failed", "err", err)
				}
			}

			if health.Observe(res) {
				log.Info("health", "state", health.String(),
					"last_error_code", health.LastErrorCode,
					"seconds_in_error", health.SecondsInError)
			}

		case <-secTicker.C:
			health.Tick()
		}
	}
}
