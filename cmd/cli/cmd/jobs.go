package cmd

import (
	"github.com/spf13/cobra"
)

var (
	jobsStatus string
	jobsLimit  int
	jobsOffset int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recent sync jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.ListJobs(jobsStatus, jobsLimit, jobsOffset)
		if err != nil {
			return err
		}

		if len(resp.Jobs) == 0 {
			cmd.Printf("No jobs found.\n")
			return nil
		}

		for _, job := range resp.Jobs {
			cmd.Printf("%s %-14s %s  %s%d/%d products, %d failed%s\n",
				statusIcon(job.Status), colorizeStatus(job.Status), job.ID,
				colorDim, job.Stats.Processed, job.Stats.Total, job.Stats.Failed, colorReset)
			cmd.Printf("  started %s\n", formatTimeWithRelative(job.StartedAt))
		}
		return nil
	},
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by job status")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "maximum number of jobs to list")
	jobsCmd.Flags().IntVar(&jobsOffset, "offset", 0, "number of jobs to skip")
	rootCmd.AddCommand(jobsCmd)
}
