package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"catsync/pkg/api"
)

var (
	importSkipExisting bool
	importPublish      bool
)

var importCmd = &cobra.Command{
	Use:   "import <product-id> [product-id...]",
	Short: "Import specific products by source ID",
	Long: `Import a chosen set of products from the source catalog, bypassing
the brand walk. Useful for re-importing products that failed during a
full sync.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		job, err := client.ImportProducts(api.ImportProductsRequest{
			ProductIDs: args,
			Options: api.SyncOptions{
				SkipExisting:    importSkipExisting,
				PublishProducts: importPublish,
			},
		})
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 409 {
				return fmt.Errorf("a sync is already running for this tenant (use 'synctl status' to watch it)")
			}
			return err
		}

		cmd.Printf("Import started for %d product(s).\n\n", len(args))
		cmd.Printf("  Job ID:  %s\n", job.ID)
		cmd.Printf("  Status:  %s\n", colorizeStatus(job.Status))
		cmd.Printf("\nTrack progress with: synctl status\n")
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importSkipExisting, "skip-existing", false, "skip products already imported")
	importCmd.Flags().BoolVar(&importPublish, "publish", false, "publish imported products immediately")
	rootCmd.AddCommand(importCmd)
}
