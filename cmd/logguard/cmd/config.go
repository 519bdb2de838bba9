package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/logguard/logguard/internal/settings"
)

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the global watchdog configuration",
	Long:  `Commands for inspecting and updating the process-wide default log size threshold.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set-max-log-size <MB>",
	Short: "Set and persist the global default log size threshold",
	Long: `Validates the candidate value and, on success, persists it to the config
file. Invalid values are rejected and the previous value is retained.
A value of 0 disables monitoring for runs without their own threshold.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigSet,
}

var configCheckCmd = &cobra.Command{
	Use:   "check-max-log-size [MB]",
	Short: "Validate a candidate threshold without committing it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)

	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "text", "Output format: text, json, yaml")
}

type configView struct {
	DefaultMaxLogSizeMB int    `json:"default_max_log_size_mb" yaml:"default_max_log_size_mb"`
	HistoryDB           string `json:"history_db" yaml:"history_db"`
	ConfigFile          string `json:"config_file,omitempty" yaml:"config_file,omitempty"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	view := configView{
		DefaultMaxLogSizeMB: newSettingsStore().Get(),
		HistoryDB:           viper.GetString(keyHistoryDB),
		ConfigFile:          viper.ConfigFileUsed(),
	}

	switch configOutput {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)

	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		return encoder.Encode(view)

	default: // text
		fmt.Printf("Default max log size: %d MB", view.DefaultMaxLogSizeMB)
		if view.DefaultMaxLogSizeMB == 0 {
			fmt.Printf(" (monitoring disabled by default)")
		}
		fmt.Println()
		if view.HistoryDB != "" {
			fmt.Printf("History database:     %s\n", view.HistoryDB)
		}
		if view.ConfigFile != "" {
			fmt.Printf("Config file:          %s\n", view.ConfigFile)
		}
		return nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	candidate, err := parseCandidate(args)
	if err != nil {
		return err
	}

	store := newSettingsStore()
	committed, err := store.Set(candidate)
	if err != nil {
		return fmt.Errorf("%v (current value %d MB retained)", err, committed)
	}

	fmt.Printf("Default max log size set to %d MB\n", committed)
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	candidate, err := parseCandidate(args)
	if err != nil {
		return err
	}

	if err := settings.Validate(candidate); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

// parseCandidate maps CLI arguments onto the validation domain: no argument
// is an absent candidate (nil), a non-numeric argument is its own error.
func parseCandidate(args []string) (*int, error) {
	if len(args) == 0 {
		return nil, nil
	}
	mb, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid max log file size %q: %w", args[0], err)
	}
	return &mb, nil
}
