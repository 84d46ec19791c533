package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"catsync/pkg/api"
)

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show the current or a specific sync job",
	Long: `Show the live status of the running sync job, or the most recent
job when nothing is running. With a job ID, show that job instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		var job *api.JobResponse
		if len(args) == 1 {
			job, err = client.GetJob(args[0])
		} else {
			job, err = client.GetStatus()
		}
		if err != nil {
			return err
		}

		printJob(cmd, job)
		return nil
	},
}

func printJob(cmd *cobra.Command, job *api.JobResponse) {
	cmd.Printf("%s%s %s%s\n\n", colorBold, statusIcon(job.Status), job.ID, colorReset)
	cmd.Printf("  Status:     %s\n", colorizeStatus(job.Status))
	cmd.Printf("  Started:    %s\n", formatTimeWithRelative(job.StartedAt))
	if job.CompletedAt != nil {
		cmd.Printf("  Completed:  %s\n", formatTimeWithRelative(*job.CompletedAt))
		cmd.Printf("  Duration:   %s\n", formatDuration(time.Duration(job.DurationMs)*time.Millisecond))
	} else if job.CurrentBrand != "" {
		cmd.Printf("  Brand:      %s (page %d)\n", job.CurrentBrand, job.CurrentPage)
		if job.CurrentProduct != "" {
			cmd.Printf("  Product:    %s\n", job.CurrentProduct)
		}
	}

	s := job.Stats
	cmd.Printf("\n  Products:   %d/%d processed\n", s.Processed, s.Total)
	cmd.Printf("    %simported%s %d  %supdated%s %d  %sskipped%s %d  %sfailed%s %d\n",
		colorGreen, colorReset, s.Imported,
		colorCyan, colorReset, s.Updated,
		colorDim, colorReset, s.Skipped,
		colorRed, colorReset, s.Failed)
	if s.TotalBrands > 0 {
		cmd.Printf("  Brands:     %d/%d processed, %d failed\n", s.ProcessedBrands, s.TotalBrands, s.FailedBrands)
	}

	if job.Error != nil {
		cmd.Printf("\n  %sError:%s %s\n", colorRed, colorReset, *job.Error)
	}
	if len(job.Errors) > 0 {
		cmd.Printf("\n  Recorded errors (%d):\n", len(job.Errors))
		for i, e := range job.Errors {
			if i >= 10 {
				cmd.Printf("    %s... and %d more%s\n", colorDim, len(job.Errors)-i, colorReset)
				break
			}
			cmd.Printf("    %s[%s]%s %s: %s\n", colorDim, e.Scope, colorReset, e.ID, e.Message)
		}
	}
}

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "error":
		return colorRed + "✗" + colorReset
	case "cancelled":
		return colorYellow + "⊘" + colorReset
	case "in_progress":
		return colorCyan + "▶" + colorReset
	default:
		return colorDim + "○" + colorReset
	}
}

func colorizeStatus(status string) string {
	switch status {
	case "completed":
		return colorGreen + status + colorReset
	case "error":
		return colorRed + status + colorReset
	case "cancelled":
		return colorYellow + status + colorReset
	case "in_progress":
		return colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t time.Time) string {
	return fmt.Sprintf("%s %s(%s)%s", t.Local().Format("2006-01-02 15:04:05"), colorDim, relativeTime(t), colorReset)
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
