package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"feeding-tube/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var execCommandContext = exec.CommandContext

func printVideo(w io.Writer, n int, v models.Video, watched bool, now time.Time) {
	mark := " "
	if watched {
		mark = "✓"
	}
	date := "unknown date"
	if v.PublishedDate != nil {
		date = models.RelativeDate(*v.PublishedDate, now)
	}
	meta := []string{models.FormatDuration(v.DurationSeconds), date}
	if views := models.FormatViews(v.ViewCount); views != "" {
		meta = append(meta, views+" views")
	}
	if v.IsShort {
		meta = append(meta, "short")
	}
	fmt.Fprintf(w, "%3d. %s %s  [%s]  %s\n", n, mark, v.Title, strings.Join(meta, " · "), v.ID)
}

func (c *cli) newVideosCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "videos [channel]",
		Short: "Show a channel's latest videos, or every stored video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := c.app.Store
			watched, err := store.WatchedIDs(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			now := time.Now()

			if len(args) == 0 {
				result, err := store.GetVideosPaginated(ctx, nil, page, pageSize)
				if err != nil {
					return err
				}
				for i, v := range result.Videos {
					_, seen := watched[v.ID]
					printVideo(out, result.Page*result.PageSize+i+1, v, seen, now)
				}
				fmt.Fprintf(out, "Page %d, %s videos in total\n", result.Page, humanize.Comma(int64(result.Total)))
				return nil
			}

			sub, err := c.resolveChannel(ctx, args[0])
			if err != nil {
				return err
			}
			settings, err := store.GetSettings(ctx)
			if err != nil {
				return err
			}
			videos, err := store.GetVideos(ctx, sub.ID)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, sub.Name)
			shown := 0
			for _, v := range videos {
				if settings.HideShorts && v.IsShort {
					continue
				}
				if !all && int64(shown) >= settings.VideosPerChannel {
					break
				}
				shown++
				_, seen := watched[v.ID]
				printVideo(out, shown, v, seen, now)
			}
			if shown == 0 {
				fmt.Fprintln(out, "No videos yet. Try: feedingtube refresh")
			}
			return store.UpdateChannelLastViewed(ctx, sub.ID)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page of all videos, starting at 0")
	cmd.Flags().IntVar(&pageSize, "page-size", 50, "Videos per page")
	cmd.Flags().BoolVar(&all, "all", false, "Show every stored video for the channel")
	return cmd
}

func (c *cli) newWatchedCmd() *cobra.Command {
	var channel bool
	cmd := &cobra.Command{
		Use:   "watched <video-id|channel>",
		Short: "Toggle a video's watched mark, or mark a whole channel watched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if channel {
				sub, err := c.resolveChannel(ctx, args[0])
				if err != nil {
					return err
				}
				videos, err := c.app.Store.GetVideos(ctx, sub.ID)
				if err != nil {
					return err
				}
				ids := make([]string, 0, len(videos))
				for _, v := range videos {
					ids = append(ids, v.ID)
				}
				n, err := c.app.Store.MarkManyWatched(ctx, ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Marked %d videos of %s watched\n", n, sub.Name)
				return nil
			}

			watched, err := c.app.Store.ToggleWatched(ctx, args[0])
			if err != nil {
				return err
			}
			if watched {
				fmt.Fprintf(out, "%s marked watched\n", args[0])
			} else {
				fmt.Fprintf(out, "%s marked unwatched\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&channel, "channel", false, "Treat the argument as a channel")
	return cmd
}

// newPlayCmd opens a video in the configured player and marks it watched.
func (c *cli) newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <video-id>",
		Short: "Open a video in the configured player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := c.app.Store.GetSettings(ctx)
			if err != nil {
				return err
			}
			if err := play(ctx, settings.Player, models.WatchURL(args[0])); err != nil {
				return err
			}
			return c.app.Store.MarkWatched(ctx, args[0])
		},
	}
}

func play(ctx context.Context, player, url string) error {
	fields := strings.Fields(player)
	if len(fields) == 0 {
		return fmt.Errorf("no player configured")
	}
	args := append(fields[1:], url)
	cmd := execCommandContext(ctx, fields[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", fields[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (c *cli) newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search YouTube",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videos, err := c.app.YtDlp.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			now := time.Now()
			out := cmd.OutOrStdout()
			for i, v := range videos {
				printVideo(out, i+1, v, false, now)
				if v.ChannelName != nil {
					fmt.Fprintf(out, "       %s\n", *v.ChannelName)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of results (1-50)")
	return cmd
}

func (c *cli) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <video-id>",
		Short: "Print a video's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.app.YtDlp.Description(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n\n%s\n", d.Title, d.ChannelName, d.Description)
			return nil
		},
	}
}
