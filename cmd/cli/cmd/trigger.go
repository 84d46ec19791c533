package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"catsync/pkg/api"
)

var (
	triggerBrand        string
	triggerBrands       []string
	triggerSkipExisting bool
	triggerPublish      bool
	triggerTemplate     string
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Start a full catalog synchronization",
	Long: `Start a full catalog synchronization for the tenant.

Without flags the tenant's stored sync options are used. Passing any
option flag overrides the stored options for this run only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		req := api.TriggerSyncRequest{}
		optionFlags := []string{"brand", "brands", "skip-existing", "publish", "title-template"}
		overridden := false
		for _, name := range optionFlags {
			if cmd.Flags().Changed(name) {
				overridden = true
				break
			}
		}
		if overridden {
			req.Options = &api.SyncOptions{
				BrandID:         triggerBrand,
				BrandIDs:        triggerBrands,
				SkipExisting:    triggerSkipExisting,
				PublishProducts: triggerPublish,
				TitleTemplate:   triggerTemplate,
			}
		}

		job, err := client.TriggerSync(req)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 409 {
				return fmt.Errorf("a sync is already running for this tenant (use 'synctl status' to watch it)")
			}
			return err
		}

		cmd.Printf("Sync started.\n\n")
		cmd.Printf("  Job ID:  %s\n", job.ID)
		cmd.Printf("  Status:  %s\n", colorizeStatus(job.Status))
		if job.Options.BrandID != "" {
			cmd.Printf("  Brand:   %s\n", job.Options.BrandID)
		}
		cmd.Printf("\nTrack progress with: synctl status\n")
		return nil
	},
}

func init() {
	triggerCmd.Flags().StringVar(&triggerBrand, "brand", "", "sync a single brand")
	triggerCmd.Flags().StringSliceVar(&triggerBrands, "brands", nil, "sync a subset of brands")
	triggerCmd.Flags().BoolVar(&triggerSkipExisting, "skip-existing", false, "skip products already imported")
	triggerCmd.Flags().BoolVar(&triggerPublish, "publish", false, "publish imported products immediately")
	triggerCmd.Flags().StringVar(&triggerTemplate, "title-template", "", "title template for imported products")
	rootCmd.AddCommand(triggerCmd)
}
