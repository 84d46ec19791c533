package cmd

import (
	"sort"

	"github.com/spf13/cobra"
)

var (
	mappingsStatus string
	mappingsLimit  int
	mappingsOffset int
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List product mappings",
	Long: `List the product mappings recorded for the tenant. Each mapping
links a source product to its storefront counterpart and carries the
import status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.ListMappings(mappingsStatus, mappingsLimit, mappingsOffset)
		if err != nil {
			return err
		}

		if len(resp.Mappings) == 0 {
			cmd.Printf("No mappings found.\n")
			return nil
		}

		for _, m := range resp.Mappings {
			storefrontID := "-"
			if m.StorefrontProductID != nil {
				storefrontID = *m.StorefrontProductID
			}
			cmd.Printf("%-12s %s → %s\n", colorizeStatus(m.Status), m.SourceProductID, storefrontID)
			if m.Error != nil {
				cmd.Printf("  %s%s%s\n", colorRed, *m.Error, colorReset)
			}
		}
		return nil
	},
}

var mappingsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show import statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.GetMappingStats()
		if err != nil {
			return err
		}

		cmd.Printf("Total mappings: %d\n", resp.Total)

		statuses := make([]string, 0, len(resp.ByStatus))
		for status := range resp.ByStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			cmd.Printf("  %-12s %d\n", status, resp.ByStatus[status])
		}
		return nil
	},
}

func init() {
	mappingsCmd.Flags().StringVar(&mappingsStatus, "status", "", "filter by mapping status")
	mappingsCmd.Flags().IntVar(&mappingsLimit, "limit", 50, "maximum number of mappings to list")
	mappingsCmd.Flags().IntVar(&mappingsOffset, "offset", 0, "number of mappings to skip")
	mappingsCmd.AddCommand(mappingsStatsCmd)
	rootCmd.AddCommand(mappingsCmd)
}
