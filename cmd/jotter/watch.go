package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/notelist"
	"github.com/aretw0/jotter/pkg/notes"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		retries int
		delay   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the notes list and reprint it on every change",
		Long: `Watch subscribes to the notes collection and prints the list again each
time it changes, until interrupted. When the subscription fails (for example the
server behind --remote goes away) it resubscribes up to --retries times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if retries < 0 {
				return fmt.Errorf("--retries must be >= 0, got %d", retries)
			}

			ctx := cmd.Context()
			client, err := a.openClient(ctx)
			if err != nil {
				return err
			}

			err = retry.Do(
				func() error {
					return a.watchOnce(ctx, client, cmd.OutOrStdout())
				},
				retry.Context(ctx),
				retry.Attempts(uint(retries)+1),
				retry.Delay(delay),
				retry.DelayType(retry.BackOffDelay),
				retry.LastErrorOnly(true),
				retry.OnRetry(func(n uint, err error) {
					a.logger.Warn("subscription failed, retrying", "attempt", n+1, "error", err)
				}),
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVar(&retries, "retries", 3, "resubscribe attempts after a failure")
	cmd.Flags().DurationVar(&delay, "retry-delay", 500*time.Millisecond, "initial wait between attempts")
	return cmd
}

// watchOnce renders the list until ctx is done (nil) or the subscription fails.
func (a *app) watchOnce(ctx context.Context, client *notes.Client, out io.Writer) error {
	updated := make(chan struct{}, 1)
	list := notelist.NewList(client, notelist.WithOnUpdate(func() {
		select {
		case updated <- struct{}{}:
		default:
		}
	}))
	list.Mount(ctx)
	defer list.Unmount()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updated:
		}

		view := list.View()
		if view.Status == notelist.StatusLoading {
			continue
		}
		if err := notelist.RenderList(out, view, a.now(), nil); err != nil {
			return err
		}
		fmt.Fprintln(out)
		if view.Status == notelist.StatusError {
			return fmt.Errorf("watch %s: %s", client.Collection(), view.Error)
		}
	}
}
