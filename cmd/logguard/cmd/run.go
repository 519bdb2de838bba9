package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/logguard/logguard/internal/logging"
	"github.com/logguard/logguard/internal/shutdown"
	"github.com/logguard/logguard/internal/watchdog"
	"github.com/logguard/logguard/pkg/api"
	"github.com/logguard/logguard/pkg/models"
	"github.com/logguard/logguard/pkg/runner"
)

var (
	maxLogSize   int
	failOnExceed bool
	runLogFile   string
	listenAddr   string
	quietRun     bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run a command under the log-size watchdog",
	Long: `Run spawns a command in its own process group, streams its combined
output to a log file and checks the log size once a second. If the log grows
past the effective threshold the run is interrupted once: aborted, or failed
when --fail-on-exceed is set.

The effective threshold is --max-log-size when given, otherwise the global
default from the configuration. A threshold of 0 disables monitoring.

Example:
  logguard run --max-log-size 100 -- make build
  logguard run --fail-on-exceed -- ./flaky-integration-suite.sh
  logguard run --listen :9099 -- ffmpeg -i input.mp4 output.mp4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMonitored,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&maxLogSize, "max-log-size", 0, "per-run log size threshold in MB (overrides the global default when set)")
	runCmd.Flags().BoolVar(&failOnExceed, "fail-on-exceed", false, "mark the run failed instead of aborted when the threshold is reached")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "run log file (default is a temp file)")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "serve /metrics, /healthz and /api/runs on this address while the run lives")
	runCmd.Flags().BoolVar(&quietRun, "quiet", false, "do not mirror the command's output to stdout")
}

func runMonitored(cmd *cobra.Command, args []string) error {
	command := args[0]
	cmdArgs := args[1:]

	logger := newLogger()
	settingsStore := newSettingsStore()

	cfg := watchdog.Settings{
		UseOwnThreshold: cmd.Flags().Changed("max-log-size"),
		OwnThresholdMB:  maxLogSize,
		FailOnExceed:    failOnExceed,
	}
	effectiveMB := watchdog.Resolve(cfg, settingsStore)

	st, err := openHistoryStore()
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	sd := shutdown.New(10 * time.Second)
	defer sd.Shutdown()
	sd.Register(func(context.Context) error { return st.Close() })

	if listenAddr != "" {
		srv := &http.Server{Addr: listenAddr, Handler: api.NewServer(st).Router()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("observability server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
		sd.Register(func(ctx context.Context) error { return srv.Shutdown(ctx) })
	}

	scheduler := watchdog.NewScheduler()
	controller := watchdog.NewController(scheduler)
	sd.Register(func(context.Context) error { scheduler.Stop(); return nil })

	engine := runner.New(logger, st)
	run, err := engine.Start(context.Background(), command, cmdArgs, runner.Options{
		LogPath:     runLogFile,
		Echo:        !quietRun,
		ThresholdMB: effectiveMB,
	})
	if err != nil {
		return err
	}

	teardown, err := controller.OnRunStart(run, cfg, settingsStore)
	if err != nil {
		return fmt.Errorf("failed to start watchdog: %w", err)
	}
	// Teardown must run on every exit path; it is idempotent.
	defer teardown()
	sd.Register(func(context.Context) error { teardown(); return nil })

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go interruptOnSignal(sigChan, run, logger)

	record, err := run.Wait()
	teardown()
	if err != nil {
		return err
	}

	switch record.Outcome {
	case models.OutcomeCompleted:
		return nil
	case models.OutcomeAborted:
		return fmt.Errorf("run %s aborted: %s", record.ID, record.InterruptReason)
	default:
		if record.Interrupted {
			return fmt.Errorf("run %s failed: %s", record.ID, record.InterruptReason)
		}
		return fmt.Errorf("run %s failed with exit code %d", record.ID, record.ExitCode)
	}
}

// interruptOnSignal aborts the run for every delivered signal, so a repeat
// Ctrl-C during the kill grace window is not swallowed. The handle is
// single-shot, making the repeats no-ops.
func interruptOnSignal(sigs <-chan os.Signal, run *runner.Run, logger *logging.Logger) {
	for range sigs {
		logger.Warn("signal received, interrupting run")
		if ex := run.Executor(); ex != nil {
			ex.Interrupt(models.OutcomeAborted, nil)
		}
	}
}
