package main

import (
	"fmt"

	"feeding-tube/internal/models"

	"github.com/spf13/cobra"
)

// settingsArgs accepts nothing or a key and its value.
func settingsArgs(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0, 2:
		return nil
	case 1:
		return fmt.Errorf("setting %s needs a value", args[0])
	}
	return fmt.Errorf("accepts at most 2 args, received %d", len(args))
}

func (c *cli) newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings [key value]",
		Short: "Show settings, or set one",
		Args:  settingsArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 2 {
				value, err := models.ParseSetting(args[0], args[1])
				if err != nil {
					return err
				}
				if err := c.app.Store.SetSetting(ctx, args[0], value); err != nil {
					return err
				}
			}

			settings, err := c.app.Store.GetSettings(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s = %s\n", models.SettingPlayer, settings.Player)
			fmt.Fprintf(out, "%s = %d\n", models.SettingVideosPerChannel, settings.VideosPerChannel)
			fmt.Fprintf(out, "%s = %t\n", models.SettingHideShorts, settings.HideShorts)
			return nil
		},
	}
}
