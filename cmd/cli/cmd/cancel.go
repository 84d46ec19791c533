package cmd

import (
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the running sync job",
	Long: `Ask the running sync job to stop. Cancellation is cooperative:
the job finishes the product it is working on before stopping.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.CancelSync()
		if err != nil {
			return err
		}

		if resp.Cancelled {
			cmd.Printf("Cancellation requested. The job will stop at the next checkpoint.\n")
		} else {
			cmd.Printf("No sync job is currently running.\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
