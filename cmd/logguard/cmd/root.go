package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/logguard/logguard/internal/logging"
	"github.com/logguard/logguard/internal/settings"
	"github.com/logguard/logguard/pkg/store"
)

// Viper keys for the persisted configuration
const (
	keyDefaultMaxLogSize = "default_max_log_size"
	keyHistoryDB         = "history_db"
	keyLogLevel          = "log_level"
)

var (
	cfgFile      string
	outputFormat string
	historyDB    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "logguard",
	Short: "Run commands under a log-size watchdog",
	Long: `logguard runs arbitrary commands while watching the size of their log
output. When a run's log grows past the configured threshold the run is
interrupted: aborted by default, or failed when configured to.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.logguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().StringVar(&historyDB, "history-db", "", "run history database (default from config or $HOME/.logguard/history.db)")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".logguard")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LOGGUARD")
	viper.AutomaticEnv()

	viper.SetDefault(keyDefaultMaxLogSize, settings.DefaultMaxLogSizeMB)
	viper.SetDefault(keyLogLevel, "info")

	// Missing config file is fine; defaults apply
	_ = viper.ReadInConfig()
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}

func newLogger() *logging.Logger {
	return logging.NewLogger(logging.ParseLevel(viper.GetString(keyLogLevel)), false)
}

// newSettingsStore builds the global threshold store backed by the config file
func newSettingsStore() *settings.Store {
	return settings.NewStore(viper.GetInt(keyDefaultMaxLogSize), persistDefaultMaxLogSize)
}

// persistDefaultMaxLogSize writes the validated global threshold back to the
// config file, creating it on first use.
func persistDefaultMaxLogSize(mb int) error {
	viper.Set(keyDefaultMaxLogSize, mb)

	err := viper.WriteConfig()
	if err == nil {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return err
	}

	path, perr := defaultConfigPath()
	if perr != nil {
		return perr
	}
	return viper.WriteConfigAs(path)
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".logguard")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// openHistoryStore opens the run-history database
func openHistoryStore() (store.Store, error) {
	path := historyDB
	if path == "" {
		path = viper.GetString(keyHistoryDB)
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".logguard")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "history.db")
	}
	return store.NewStore(store.Config{Type: "sqlite", Path: path})
}
