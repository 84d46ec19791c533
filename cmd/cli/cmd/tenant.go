package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"catsync/pkg/api"
)

var (
	tenantName        string
	tenantAccessToken string
	tenantSchedule    string
	tenantEnable      bool
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new tenant",
	Long: `Register a new tenant with the controller. The returned API key is
shown exactly once; store it somewhere safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Tenant creation happens before a key exists, so no token here.
		client := &SyncClient{
			BaseURL:    viper.GetString("url"),
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
		}

		resp, err := client.CreateTenant(api.CreateTenantRequest{
			Name:               tenantName,
			AccessToken:        tenantAccessToken,
			ScheduleExpression: tenantSchedule,
			SyncEnabled:        tenantEnable,
		})
		if err != nil {
			return err
		}

		cmd.Printf("Tenant created.\n\n")
		cmd.Printf("  ID:      %s\n", resp.ID)
		cmd.Printf("  Name:    %s\n", resp.Name)
		cmd.Printf("  API key: %s%s%s\n", colorBold, resp.ApiKey, colorReset)
		cmd.Printf("\n%sThis key is shown only once.%s\n", colorYellow, colorReset)
		return nil
	},
}

func init() {
	tenantCreateCmd.Flags().StringVar(&tenantName, "name", "", "tenant name")
	tenantCreateCmd.Flags().StringVar(&tenantAccessToken, "access-token", "", "storefront access token")
	tenantCreateCmd.Flags().StringVar(&tenantSchedule, "schedule", "", "cron expression for scheduled syncs")
	tenantCreateCmd.Flags().BoolVar(&tenantEnable, "enable", false, "enable scheduled sync")
	tenantCreateCmd.MarkFlagRequired("name")
	tenantCmd.AddCommand(tenantCreateCmd)
	rootCmd.AddCommand(tenantCmd)
}
