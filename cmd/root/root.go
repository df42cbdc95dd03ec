// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"finsight/bankstmt/internal/common"
	"finsight/bankstmt/internal/config"
	"finsight/bankstmt/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
	Rules  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the application configuration loaded before any command runs
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bankstmt",
		Short: "A CLI tool to parse bank and credit card statements and categorize transactions.",
		Long: `bankstmt parses bank account spreadsheets and PDF statements as well as
credit card PDF statements, extracts merchants and categorizes every
transaction with a rule table, then writes the result to CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to bankstmt!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Warnf("Failed to load configuration, using defaults: %v", err)
				cfg = &config.Config{}
				cfg.Log.Level = "info"
				cfg.Log.Format = "text"
				cfg.Rules.File = "rules.yaml"
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)

			common.SetLogger(GetLogrusAdapter())
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// GetLogrusAdapter wraps the shared command logger in the logging.Logger
// interface used by the internal packages.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// RulesFile resolves the rule file to use: the explicit flag wins, then the
// configured default.
func RulesFile() string {
	if SharedFlags.Rules != "" {
		return SharedFlags.Rules
	}
	if Cfg != nil && Cfg.Rules.File != "" {
		return Cfg.Rules.File
	}
	return "rules.yaml"
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Rules, "rules", "r", "", "Rule file (defaults to the configured rules.file)")
}
