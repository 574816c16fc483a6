package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"feeding-tube/internal/db"
	"feeding-tube/internal/feed"
	"feeding-tube/internal/models"
	"feeding-tube/internal/syncer"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (c *cli) newAddCmd() *cobra.Command {
	var noPrime bool
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Subscribe to the channel behind a channel or video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sub, err := c.app.YtDlp.ChannelInfo(ctx, args[0])
			if err != nil {
				return fmt.Errorf("resolve channel: %w", err)
			}
			now := time.Now().UTC()
			sub.AddedAt = &now
			if err := c.app.Store.AddSubscription(ctx, *sub); err != nil {
				if errors.Is(err, db.ErrConflict) {
					return fmt.Errorf("already subscribed to %s", sub.Name)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed to %s\n", sub.Name)
			if noPrime {
				return nil
			}
			return c.prime(cmd, *sub)
		},
	}
	cmd.Flags().BoolVar(&noPrime, "no-prime", false, "Skip fetching the channel's back catalogue")
	return cmd
}

func (c *cli) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <channel>",
		Short: "Unsubscribe by index, id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := c.resolveChannel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.RemoveSubscription(cmd.Context(), sub.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed from %s\n", sub.Name)
			return nil
		},
	}
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions with their new-video counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := c.app.Store
			subs, err := store.ListSubscriptions(ctx)
			if err != nil {
				return err
			}
			settings, err := store.GetSettings(ctx)
			if err != nil {
				return err
			}
			counts, err := store.NewVideoCounts(ctx, settings.HideShorts)
			if err != nil {
				return err
			}
			stats, err := store.ChannelStats(ctx, settings.HideShorts)
			if err != nil {
				return err
			}
			done, err := store.FullyWatchedChannels(ctx, settings.HideShorts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, "No subscriptions. Add one with: feedingtube add <url>")
				return nil
			}
			now := time.Now()
			for i, sub := range subs {
				mark := " "
				if _, ok := done[sub.ID]; ok {
					mark = "✓"
				}
				line := fmt.Sprintf("%3d. %s %s", i+1, mark, sub.Name)
				st := stats[sub.ID]
				line += fmt.Sprintf("  (%s videos", humanize.Comma(int64(st.VideoCount)))
				if n := counts[sub.ID]; n > 0 {
					line += fmt.Sprintf(", %d new", n)
				}
				if st.LatestDate != nil {
					line += ", latest " + models.RelativeDate(*st.LatestDate, now)
				}
				fmt.Fprintln(out, line+")")
			}
			return nil
		},
	}
}

func (c *cli) newOPMLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opml",
		Short: "Import or export subscriptions as OPML",
	}

	export := &cobra.Command{
		Use:   "export [file]",
		Short: "Write subscriptions as OPML to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := c.app.Store.ListSubscriptions(cmd.Context())
			if err != nil {
				return err
			}
			data, err := feed.ExportOPML(subs, c.app.Config.FeedBaseURL, time.Now())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(args[0], data, 0644)
		},
	}

	var prime bool
	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Subscribe to every channel listed in an OPML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			subs, err := feed.ParseOPML(data)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			added := 0
			now := time.Now().UTC()
			for _, sub := range subs {
				sub.AddedAt = &now
				if err := c.app.Store.AddSubscription(ctx, sub); err != nil {
					if errors.Is(err, db.ErrConflict) {
						continue
					}
					return err
				}
				added++
				if prime {
					if err := c.prime(cmd, sub); err != nil && !errors.Is(err, syncer.ErrListFailed) {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d channels\n", added, len(subs))
			return nil
		},
	}
	imp.Flags().BoolVar(&prime, "prime", false, "Prime each newly added channel")

	cmd.AddCommand(export, imp)
	return cmd
}
