// Command feedingtube tracks YouTube subscriptions from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"feeding-tube/internal/app"
	"feeding-tube/internal/config"
	"feeding-tube/internal/models"

	"github.com/spf13/cobra"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the opened App through the subcommands.
type cli struct {
	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "feedingtube",
		Short:         "Track YouTube subscriptions without an account",
		Version:       CommitSHA,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.app, err = app.Open(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.SetVersionTemplate("feedingtube {{.Version}}\n")

	root.AddCommand(
		c.newAddCmd(),
		c.newRemoveCmd(),
		c.newListCmd(),
		c.newOPMLCmd(),
		c.newRefreshCmd(),
		c.newPrimeCmd(),
		c.newWatchCmd(),
		c.newVideosCmd(),
		c.newWatchedCmd(),
		c.newPlayCmd(),
		c.newSearchCmd(),
		c.newInfoCmd(),
		c.newSettingsCmd(),
	)
	return root
}

// resolveChannel finds a subscription by 1-based list index, id or
// case-insensitive name.
func (c *cli) resolveChannel(ctx context.Context, ref string) (*models.Subscription, error) {
	subs, err := c.app.Store.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(subs) {
			return nil, fmt.Errorf("no channel at index %d (have %d)", n, len(subs))
		}
		return &subs[n-1], nil
	}
	for i := range subs {
		if subs[i].ID == ref || strings.EqualFold(subs[i].Name, ref) {
			return &subs[i], nil
		}
	}
	return nil, fmt.Errorf("no subscribed channel matches %q", ref)
}
