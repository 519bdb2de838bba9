package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/logguard/logguard/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show runs recorded as running and whether their processes are alive",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type runStatusView struct {
	ID       string  `json:"id"`
	PID      int     `json:"pid"`
	Command  string  `json:"command"`
	Alive    bool    `json:"alive"`
	CPUPct   float64 `json:"cpu_percent"`
	RSSBytes uint64  `json:"rss_bytes"`
	LogBytes int64   `json:"log_bytes"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer st.Close()

	running := st.GetRunsByStatus(models.RunStatusRunning)

	views := make([]runStatusView, 0, len(running))
	for _, run := range running {
		views = append(views, probeRun(run))
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(views) == 0 {
		fmt.Println("No active runs.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "PID", "Command", "Alive", "CPU %", "RSS", "Log Size")

	for _, v := range views {
		alive := "no"
		if v.Alive {
			alive = "yes"
		}
		table.Append(shortID(v.ID), fmt.Sprintf("%d", v.PID), v.Command,
			alive, fmt.Sprintf("%.1f", v.CPUPct), formatBytes(int64(v.RSSBytes)),
			formatBytes(v.LogBytes))
	}

	table.Render()
	return nil
}

// probeRun checks process liveness and resource usage for a recorded run.
// A run can show as recorded-running but dead if the recording process was
// killed before it could finalize the record.
func probeRun(run *models.RunRecord) runStatusView {
	view := runStatusView{
		ID:       run.ID,
		PID:      run.PID,
		Command:  run.Command,
		LogBytes: run.LogBytes,
	}
	if fi, err := os.Stat(run.LogPath); err == nil {
		view.LogBytes = fi.Size()
	}

	proc, err := process.NewProcess(int32(run.PID))
	if err != nil {
		return view
	}
	view.Alive = true
	if pct, err := proc.CPUPercent(); err == nil {
		view.CPUPct = pct
	}
	if mi, err := proc.MemoryInfo(); err == nil && mi != nil {
		view.RSSBytes = mi.RSS
	}
	return view
}
