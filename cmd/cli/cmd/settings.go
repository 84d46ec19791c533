package cmd

import (
	"github.com/spf13/cobra"

	"catsync/pkg/api"
)

var (
	settingsEnable       bool
	settingsDisable      bool
	settingsSchedule     string
	settingsSkipExisting bool
	settingsPublish      bool
	settingsTemplate     string
	settingsBrands       []string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show tenant sync settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.GetSettings()
		if err != nil {
			return err
		}

		printSettings(cmd, resp)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change tenant sync settings",
	Long: `Change scheduled sync settings for the tenant. Only the flags you
pass are changed; everything else keeps its current value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		req := api.UpdateSettingsRequest{}
		if settingsEnable {
			t := true
			req.SyncEnabled = &t
		}
		if settingsDisable {
			f := false
			req.SyncEnabled = &f
		}
		if cmd.Flags().Changed("schedule") {
			req.ScheduleExpression = &settingsSchedule
		}
		if cmd.Flags().Changed("skip-existing") || cmd.Flags().Changed("publish") ||
			cmd.Flags().Changed("title-template") || cmd.Flags().Changed("brands") {
			req.Options = &api.SyncOptions{
				BrandIDs:        settingsBrands,
				SkipExisting:    settingsSkipExisting,
				PublishProducts: settingsPublish,
				TitleTemplate:   settingsTemplate,
			}
		}

		resp, err := client.UpdateSettings(req)
		if err != nil {
			return err
		}

		cmd.Printf("Settings updated.\n\n")
		printSettings(cmd, resp)
		return nil
	},
}

func printSettings(cmd *cobra.Command, s *api.SettingsResponse) {
	enabled := colorRed + "disabled" + colorReset
	if s.SyncEnabled {
		enabled = colorGreen + "enabled" + colorReset
	}
	cmd.Printf("  Scheduled sync:  %s\n", enabled)
	if s.ScheduleExpression != "" {
		cmd.Printf("  Schedule:        %s\n", s.ScheduleExpression)
	}
	if s.LastSyncAt != nil {
		cmd.Printf("  Last sync:       %s\n", formatTimeWithRelative(*s.LastSyncAt))
	}
	cmd.Printf("  Options:\n")
	cmd.Printf("    skip existing:  %v\n", s.Options.SkipExisting)
	cmd.Printf("    publish:        %v\n", s.Options.PublishProducts)
	if s.Options.TitleTemplate != "" {
		cmd.Printf("    title template: %s\n", s.Options.TitleTemplate)
	}
	if len(s.Options.BrandIDs) > 0 {
		cmd.Printf("    brands:         %v\n", s.Options.BrandIDs)
	}
}

func init() {
	settingsSetCmd.Flags().BoolVar(&settingsEnable, "enable", false, "enable scheduled sync")
	settingsSetCmd.Flags().BoolVar(&settingsDisable, "disable", false, "disable scheduled sync")
	settingsSetCmd.Flags().StringVar(&settingsSchedule, "schedule", "", "cron expression for scheduled syncs")
	settingsSetCmd.Flags().BoolVar(&settingsSkipExisting, "skip-existing", false, "skip products already imported")
	settingsSetCmd.Flags().BoolVar(&settingsPublish, "publish", false, "publish imported products immediately")
	settingsSetCmd.Flags().StringVar(&settingsTemplate, "title-template", "", "title template for imported products")
	settingsSetCmd.Flags().StringSliceVar(&settingsBrands, "brands", nil, "restrict scheduled syncs to these brands")
	settingsSetCmd.MarkFlagsMutuallyExclusive("enable", "disable")
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
