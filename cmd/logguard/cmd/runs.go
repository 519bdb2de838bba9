package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/logguard/logguard/pkg/models"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long:  `Commands for inspecting the run history recorded by logguard run.`,
	RunE:  runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs := st.GetAllRuns()

	if IsJSONOutput() {
		output, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Command", "Status", "Outcome", "Log Size", "Started", "Duration")

	for _, run := range runs {
		table.Append(shortID(run.ID), run.Command, string(run.Status),
			string(run.Outcome), formatBytes(run.LogBytes),
			run.StartedAt.Format(time.RFC3339),
			run.Duration().Truncate(time.Millisecond).String())
	}

	table.Render()
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := findRun(st.GetAllRuns(), args[0])
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	table.Append("ID", run.ID)
	table.Append("Command", commandLine(run))
	table.Append("PID", fmt.Sprintf("%d", run.PID))
	table.Append("Status", string(run.Status))
	table.Append("Outcome", string(run.Outcome))
	table.Append("Exit Code", fmt.Sprintf("%d", run.ExitCode))
	table.Append("Log Path", run.LogPath)
	table.Append("Log Size", formatBytes(run.LogBytes))
	table.Append("Threshold", fmt.Sprintf("%d MB", run.ThresholdMB))
	if run.Interrupted {
		table.Append("Interrupted", run.InterruptReason)
	}
	table.Append("Started At", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		table.Append("Finished At", run.FinishedAt.Format(time.RFC3339))
	}
	table.Append("Duration", run.Duration().Truncate(time.Millisecond).String())

	table.Render()
	return nil
}

// findRun matches a full or shortened run ID
func findRun(runs []*models.RunRecord, id string) (*models.RunRecord, error) {
	for _, run := range runs {
		if run.ID == id || shortID(run.ID) == id {
			return run, nil
		}
	}
	return nil, fmt.Errorf("run %s not found", id)
}

func commandLine(run *models.RunRecord) string {
	line := run.Command
	for _, arg := range run.Args {
		line += " " + arg
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
