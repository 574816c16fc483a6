package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"feeding-tube/internal/models"
	"feeding-tube/internal/syncer"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// prime runs a full prime of sub, drawing progress on stderr.
func (c *cli) prime(cmd *cobra.Command, sub models.Subscription) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progress := syncer.NewProgressChannel(16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		drawProgress(cmd.ErrOrStderr(), sub.Name, progress.C())
	}()

	result, err := c.app.Engine.PrimeAndStore(ctx, c.app.Store, syncer.ChannelFrom(sub), progress)
	progress.Close()
	wg.Wait()

	if result != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s added, %s already stored, %s failed (%s on channel)\n",
			sub.Name,
			humanize.Comma(int64(result.Added)),
			humanize.Comma(int64(result.Skipped)),
			humanize.Comma(int64(result.Failed)),
			humanize.Comma(int64(result.TotalRemote)))
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Interrupted; fetched videos were kept.")
		return nil
	}
	return err
}

func drawProgress(w io.Writer, name string, updates <-chan syncer.Progress) {
	drawn := false
	for p := range updates {
		fmt.Fprintf(w, "\rPriming %s: %d/%d", name, p.Done, p.Total)
		drawn = true
	}
	if drawn {
		fmt.Fprintln(w)
	}
}

func (c *cli) newPrimeCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "prime [channel]",
		Short: "Fetch a channel's full back catalogue with metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				sub, err := c.resolveChannel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.prime(cmd, *sub)
			}
			if !all {
				return errors.New("name a channel or pass --all")
			}
			subs, err := c.app.Store.ListSubscriptions(cmd.Context())
			if err != nil {
				return err
			}
			for _, sub := range subs {
				if err := c.prime(cmd, sub); err != nil {
					if !errors.Is(err, syncer.ErrListFailed) {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Prime every subscription in turn")
	return cmd
}

func (c *cli) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Pull every subscription's feed for recent uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.Engine.RefreshAndStore(cmd.Context(), c.app.Store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s videos\n", humanize.Comma(int64(n)))
			return nil
		},
	}
}

// newWatchCmd refreshes once, then again on every tick of the schedule
// until interrupted.
func (c *cli) newWatchCmd() *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep refreshing on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if schedule == "" {
				schedule = c.app.Config.RefreshSchedule
			}
			out := cmd.OutOrStdout()
			refresh := func() {
				n, err := c.app.Engine.RefreshAndStore(ctx, c.app.Store)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "refresh: %v\n", err)
					return
				}
				fmt.Fprintf(out, "Stored %s videos\n", humanize.Comma(int64(n)))
			}

			cr := cron.New()
			if _, err := cr.AddFunc(schedule, refresh); err != nil {
				return fmt.Errorf("schedule %q: %w", schedule, err)
			}
			refresh()
			cr.Start()
			fmt.Fprintf(out, "Refreshing %s; Ctrl-C to stop\n", schedule)

			<-ctx.Done()
			<-cr.Stop().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression or @every duration (defaults to FT_REFRESH_SCHEDULE)")
	return cmd
}
