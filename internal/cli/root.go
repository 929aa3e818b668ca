// Package cli implements the appearances command line.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/opencode-ai/appearances/internal/config"
	"github.com/opencode-ai/appearances/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	logLevel       string
	logFormat      string
	jsonOutput     bool
	jsonlOutput    bool
	noColor        bool
	nonInteractive bool
	noProgress     bool
	daemonAddr     string
	bridgeKind     string
	bridgeDir      string
	requestTimeout time.Duration

	appConfig  *config.Config
	appVersion = "dev"
	logger     = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "appearances",
	Short: "Inspect and serve native appearance data",
	Long: `appearances reads the named appearances (Aqua, DarkAqua and the vibrant
variants) from the native layer, keeps the latest snapshot of each and
reports changes as the system switches appearance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/appearances/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: console or json")
	flags.BoolVar(&jsonOutput, "json", false, "write JSON output")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "write JSON lines output")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt or start the TUI")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	flags.StringVar(&daemonAddr, "daemon", "", "query a running daemon at host:port instead of the local bridge")
	flags.StringVar(&bridgeKind, "bridge", "", "bridge kind: helper or directory")
	flags.StringVar(&bridgeDir, "bridge-dir", "", "snapshot directory for the directory bridge")
	flags.DurationVar(&requestTimeout, "timeout", 10*time.Second, "timeout for a single appearance request")
}

// Execute runs the root command and reports any error on stderr.
func Execute(version string) error {
	if version != "" {
		appVersion = version
	}
	rootCmd.Version = appVersion
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if bridgeKind != "" {
		cfg.Bridge.Kind = strings.ToLower(bridgeKind)
	}
	if bridgeDir != "" {
		cfg.Bridge.Dir = bridgeDir
		if bridgeKind == "" {
			cfg.Bridge.Kind = config.BridgeDirectory
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	appConfig = cfg

	logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("bridge", cfg.Bridge.Kind).
		Msg("configuration loaded")
	return nil
}

// GetConfig returns the loaded configuration, nil before a command runs.
func GetConfig() *config.Config {
	return appConfig
}
